// Package store defines the datastore abstraction for cardstash. Business
// logic depends on the Store interface, never on concrete implementations,
// so handlers and the gateway can be tested without a running database.
package store

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/cardstash/cardstash/pkg/types"
)

// ErrNotFound is returned when a requested card does not exist.
var ErrNotFound = errors.New("card not found")

// PersistenceError reports a failed structured-store write. It wraps the
// driver error for diagnostics.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store defines all data access operations for cardstash.
type Store interface {
	// CreateCard inserts one card and fills its assigned ID and CreatedAt.
	// Cards are immutable once created; there is no update or delete path.
	CreateCard(ctx context.Context, c *domain.Card) error
	GetCard(ctx context.Context, id string) (*domain.Card, error)
	// ListCards returns cards newest first, plus the total count.
	ListCards(ctx context.Context, limit, offset int) ([]domain.Card, int, error)
	// CollectionValue returns the derived total of present estimates and
	// the number of cards. Totals are never stored.
	CollectionValue(ctx context.Context) (total float64, cards int, err error)
	// ListImageURLs returns every stored card's image URL, used by the
	// audit sweep to detect orphaned storage objects.
	ListImageURLs(ctx context.Context) ([]string, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
