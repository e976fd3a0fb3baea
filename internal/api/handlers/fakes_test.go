package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/cardstash/cardstash/internal/ebay"
	"github.com/cardstash/cardstash/internal/notify"
	"github.com/cardstash/cardstash/internal/store"
	domain "github.com/cardstash/cardstash/pkg/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeEbayClient struct {
	resp *ebay.SearchResponse
	err  error

	lastRequest ebay.SearchRequest
}

func (f *fakeEbayClient) Search(
	_ context.Context,
	req ebay.SearchRequest,
) (*ebay.SearchResponse, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeObjects struct {
	uploadErr   error
	uploadedKey string
}

func (f *fakeObjects) Upload(_ context.Context, key, _ string, _ []byte) error {
	f.uploadedKey = key
	return f.uploadErr
}

func (f *fakeObjects) PublicURL(key string) string {
	return "https://storage.test/public/card-images/" + key
}

type fakeStore struct {
	createErr error
	pingErr   error

	cards []domain.Card
	total float64
}

func (f *fakeStore) CreateCard(_ context.Context, c *domain.Card) error {
	if f.createErr != nil {
		return f.createErr
	}
	c.ID = "22222222-2222-2222-2222-222222222222"
	c.CreatedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return nil
}

func (f *fakeStore) GetCard(context.Context, string) (*domain.Card, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListCards(context.Context, int, int) ([]domain.Card, int, error) {
	return f.cards, len(f.cards), nil
}

func (f *fakeStore) CollectionValue(context.Context) (float64, int, error) {
	return f.total, len(f.cards), nil
}

func (f *fakeStore) ListImageURLs(context.Context) ([]string, error) { return nil, nil }
func (f *fakeStore) Migrate(context.Context) error                   { return nil }
func (f *fakeStore) Ping(context.Context) error                      { return f.pingErr }

type fakeNotifier struct {
	sent chan *notify.CardPayload
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(chan *notify.CardPayload, 1)}
}

func (f *fakeNotifier) SendCardSaved(_ context.Context, card *notify.CardPayload) error {
	f.sent <- card
	return nil
}
