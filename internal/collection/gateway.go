// Package collection owns the card save path: the image goes to object
// storage first, then the card row is inserted referencing the public URL.
// The two writes are not transactional; a failed insert leaves the uploaded
// image behind, and the audit sweep reports such orphans.
package collection

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/cardstash/cardstash/internal/metrics"
	"github.com/cardstash/cardstash/internal/store"
	domain "github.com/cardstash/cardstash/pkg/types"
)

// DefaultContentType is assumed when the upload does not declare one.
const DefaultContentType = "image/jpeg"

// KeyPrefix is the object key prefix for card images.
const KeyPrefix = "cards/"

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectStore is the slice of the storage client the gateway needs.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	PublicURL(key string) string
}

// Gateway coordinates image storage and card persistence.
type Gateway struct {
	objects ObjectStore
	store   store.Store
	log     *slog.Logger
	now     func() time.Time
}

// Option configures the Gateway.
type Option func(*Gateway)

// WithClock overrides the key timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// NewGateway creates a Gateway over the given object store and datastore.
func NewGateway(objects ObjectStore, st store.Store, log *slog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		objects: objects,
		store:   st,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SanitizeFileName collapses every run of characters outside
// [a-zA-Z0-9._-] into a single underscore. An empty name falls back to
// "upload.jpg".
func SanitizeFileName(name string) string {
	if name == "" {
		return "upload.jpg"
	}
	return unsafeChars.ReplaceAllString(name, "_")
}

// objectKey builds a collision-resistant key from the upload time and the
// sanitized original file name.
func (g *Gateway) objectKey(fileName string) string {
	return fmt.Sprintf("%s%d_%s", KeyPrefix, g.now().UnixMilli(), SanitizeFileName(fileName))
}

// Save uploads the image, then inserts the card row referencing its public
// URL. A storage failure aborts before any insert. An insert failure is
// fatal even though the image is already stored; the orphaned object is
// left in place.
func (g *Gateway) Save(
	ctx context.Context,
	fileName, contentType string,
	data []byte,
	meta domain.CardMeta,
) (*domain.Card, error) {
	if contentType == "" {
		contentType = DefaultContentType
	}

	key := g.objectKey(fileName)

	if err := g.objects.Upload(ctx, key, contentType, data); err != nil {
		metrics.UploadFailuresTotal.WithLabelValues("storage").Inc()
		return nil, err
	}

	card := &domain.Card{
		ImageURL:          g.objects.PublicURL(key),
		Sport:             meta.Sport,
		Player:            meta.Player,
		Year:              meta.Year,
		Brand:             meta.Brand,
		SetName:           meta.SetName,
		CardNumber:        meta.CardNumber,
		GradedCompany:     meta.GradedCompany,
		Grade:             meta.Grade,
		SerialNumber:      meta.SerialNumber,
		Flags:             meta.Flags,
		EstimatedPriceCAD: meta.EstimatedPriceCAD,
		PriceSource:       meta.PriceSource,
	}

	if err := g.store.CreateCard(ctx, card); err != nil {
		metrics.UploadFailuresTotal.WithLabelValues("insert").Inc()
		g.log.Error("card insert failed after image upload, object orphaned",
			"key", key, "error", err)
		return nil, err
	}

	metrics.UploadsTotal.Inc()
	g.log.Info("card saved",
		"id", card.ID,
		"player", card.Player,
		"estimated_price_cad", card.EstimateOrZero(),
	)

	return card, nil
}

// List returns cards newest first, plus the total count.
func (g *Gateway) List(ctx context.Context, limit, offset int) ([]domain.Card, int, error) {
	return g.store.ListCards(ctx, limit, offset)
}

// Total returns the derived collection value and card count.
func (g *Gateway) Total(ctx context.Context) (float64, int, error) {
	return g.store.CollectionValue(ctx)
}
