package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/cardstash/cardstash/internal/api/handlers"
	"github.com/cardstash/cardstash/internal/api/middleware"
	"github.com/cardstash/cardstash/internal/audit"
	"github.com/cardstash/cardstash/internal/collection"
	"github.com/cardstash/cardstash/internal/config"
	"github.com/cardstash/cardstash/internal/ebay"
	"github.com/cardstash/cardstash/internal/notify"
	"github.com/cardstash/cardstash/internal/pricing"
	"github.com/cardstash/cardstash/internal/storage"
	"github.com/cardstash/cardstash/internal/store"
	"github.com/cardstash/cardstash/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and audit scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN(),
		store.WithPoolSize(cfg.Database.PoolSize))
	cancel()
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	tokens := ebay.NewAppTokenProvider(
		cfg.Ebay.ClientID,
		cfg.Ebay.ClientSecret,
		ebay.WithTokenURL(cfg.Ebay.TokenURL),
	)
	browse := ebay.NewBrowseClient(
		tokens,
		ebay.WithBrowseURL(cfg.Ebay.BrowseURL),
		ebay.WithMarketplace(cfg.Ebay.Marketplace),
		ebay.WithCurrency(cfg.Ebay.Currency),
	)
	pricingSvc := pricing.NewService(browse, cfg.Ebay.Marketplace)

	objects := storage.NewClient(cfg.Storage.URL, cfg.Storage.ServiceKey, cfg.Storage.Bucket)
	gateway := collection.NewGateway(objects, st, log)

	var notifier notify.Notifier = notify.NewNoOpNotifier(log)
	if cfg.Notifications.Discord.Enabled {
		notifier = notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL)
		log.Info("discord notifications enabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	healthHandler := handlers.NewHealthHandler(st)
	e.GET("/healthz", healthHandler.Healthz)
	e.GET("/readyz", healthHandler.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/price-lookup", handlers.NewPriceLookupHandler(pricingSvc).Lookup)
	e.POST("/upload", handlers.NewUploadHandler(gateway, notifier, log).Upload)

	api := humaecho.New(e, huma.DefaultConfig("cardstash", Version))
	handlers.RegisterCardRoutes(api, handlers.NewCardsHandler(gateway))

	auditor := audit.NewAuditor(st, objects, log)
	scheduler, err := audit.NewScheduler(auditor, cfg.Schedule.AuditInterval, log)
	if err != nil {
		return fmt.Errorf("creating audit scheduler: %w", err)
	}
	scheduler.Start()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr, "marketplace", cfg.Ebay.Marketplace)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}
