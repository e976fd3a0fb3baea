package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cardstash/cardstash/internal/collection"
	"github.com/cardstash/cardstash/internal/metrics"
	"github.com/cardstash/cardstash/internal/notify"
	"github.com/cardstash/cardstash/internal/storage"
	"github.com/cardstash/cardstash/internal/store"
	domain "github.com/cardstash/cardstash/pkg/types"
)

const notifyTimeout = 10 * time.Second

// UploadHandler accepts a card photo plus its metadata envelope and saves
// both through the collection gateway.
type UploadHandler struct {
	gateway  *collection.Gateway
	notifier notify.Notifier
	log      *slog.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(
	g *collection.Gateway,
	n notify.Notifier,
	log *slog.Logger,
) *UploadHandler {
	return &UploadHandler{gateway: g, notifier: n, log: log}
}

// Upload handles POST /upload. The request is multipart form data with a
// "file" part and an optional "meta" part carrying the metadata envelope
// as a JSON string.
func (h *UploadHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "file is required",
		})
	}

	var meta domain.CardMeta
	if raw := c.FormValue("meta"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "meta is not valid JSON",
			})
		}
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "file is unreadable",
		})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "file is unreadable",
		})
	}

	card, err := h.gateway.Save(
		c.Request().Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
		meta,
	)
	if err != nil {
		return saveErrorResponse(c, err)
	}

	// Best effort; a failed announcement never fails the save.
	go h.announce(card)

	return c.JSON(http.StatusOK, map[string]any{
		"ok":   true,
		"card": card,
	})
}

func (h *UploadHandler) announce(card *domain.Card) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	estimate := ""
	if card.EstimatedPriceCAD != nil {
		estimate = fmt.Sprintf("$%.2f CAD", *card.EstimatedPriceCAD)
	}

	payload := &notify.CardPayload{
		Player:        card.Player,
		Year:          card.Year,
		Brand:         card.Brand,
		SetName:       card.SetName,
		CardNumber:    card.CardNumber,
		Grade:         card.Grade,
		GradedCompany: card.GradedCompany,
		Flags:         card.Flags,
		ImageURL:      card.ImageURL,
		Estimate:      estimate,
		PriceSource:   card.PriceSource,
	}

	if err := h.notifier.SendCardSaved(ctx, payload); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		h.log.Warn("card-saved notification failed", "error", err)
	}
}

// saveErrorResponse maps save failures onto 502 with backend details, and
// anything unrecognized onto 500.
func saveErrorResponse(c echo.Context, err error) error {
	var storageErr *storage.StorageError
	if errors.As(err, &storageErr) {
		return c.JSON(http.StatusBadGateway, map[string]any{
			"error":          "image upload failed",
			"backend_status": storageErr.Status,
			"backend_body":   storageErr.Body,
		})
	}

	var persistErr *store.PersistenceError
	if errors.As(err, &persistErr) {
		return c.JSON(http.StatusBadGateway, map[string]any{
			"error":  "card save failed",
			"detail": persistErr.Error(),
		})
	}

	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "unknown error",
	})
}
