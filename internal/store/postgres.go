package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/cardstash/cardstash/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled
// PostgreSQL).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Option configures the PostgresStore.
type Option func(*storeOptions)

type storeOptions struct {
	poolSize int32
}

// WithPoolSize caps the connection pool at n connections. Values below 1
// keep the default.
func WithPoolSize(n int) Option {
	return func(o *storeOptions) {
		if n > 0 {
			o.poolSize = int32(n)
		}
	}
}

func poolConfig(connString string, opts ...Option) (*pgxpool.Config, error) {
	o := storeOptions{poolSize: defaultPoolSize}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = o.poolSize
	return cfg, nil
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string, opts ...Option) (*PostgresStore, error) {
	cfg, err := poolConfig(connString, opts...)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// CreateCard inserts one card and fills its assigned ID and CreatedAt.
// Insert failures wrap *PersistenceError; the caller decides what that
// means for any already-uploaded image.
func (s *PostgresStore) CreateCard(ctx context.Context, c *domain.Card) error {
	flags := c.Flags
	if flags == nil {
		flags = []string{}
	}

	args := pgx.NamedArgs{
		"image_url":           c.ImageURL,
		"sport":               c.Sport,
		"player":              c.Player,
		"year":                c.Year,
		"brand":               c.Brand,
		"set_name":            c.SetName,
		"card_number":         c.CardNumber,
		"graded_company":      c.GradedCompany,
		"grade":               c.Grade,
		"serial_number":       c.SerialNumber,
		"flags":               flags,
		"estimated_price_cad": c.EstimatedPriceCAD,
		"price_source":        c.PriceSource,
	}

	err := s.pool.QueryRow(ctx, queryInsertCard, args).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return &PersistenceError{Op: "insert card", Err: err}
	}
	return nil
}

// GetCard retrieves a card by its internal UUID.
func (s *PostgresStore) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	c := &domain.Card{}
	if err := scanCard(s.pool.QueryRow(ctx, queryGetCard, id), c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting card: %w", err)
	}
	return c, nil
}

// ListCards returns cards newest first, plus the total count.
func (s *PostgresStore) ListCards(
	ctx context.Context,
	limit, offset int,
) ([]domain.Card, int, error) {
	if limit <= 0 {
		limit = 50
	}

	var total int
	if err := s.pool.QueryRow(ctx, queryCountCards).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting cards: %w", err)
	}

	rows, err := s.pool.Query(ctx, queryListCards, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing cards: %w", err)
	}
	defer rows.Close()

	cards := []domain.Card{}
	for rows.Next() {
		var c domain.Card
		if err := scanCard(rows, &c); err != nil {
			return nil, 0, fmt.Errorf("scanning card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating cards: %w", err)
	}

	return cards, total, nil
}

// CollectionValue sums the present estimates across all cards.
func (s *PostgresStore) CollectionValue(ctx context.Context) (float64, int, error) {
	var total float64
	var cards int
	if err := s.pool.QueryRow(ctx, queryCollectionValue).Scan(&total, &cards); err != nil {
		return 0, 0, fmt.Errorf("computing collection value: %w", err)
	}
	return total, cards, nil
}

// ListImageURLs returns every stored card's image URL.
func (s *PostgresStore) ListImageURLs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, queryListImageURLs)
	if err != nil {
		return nil, fmt.Errorf("listing image urls: %w", err)
	}
	defer rows.Close()

	urls := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scanning image url: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating image urls: %w", err)
	}

	return urls, nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for scanCard.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner, c *domain.Card) error {
	return row.Scan(
		&c.ID, &c.ImageURL,
		&c.Sport, &c.Player, &c.Year, &c.Brand, &c.SetName, &c.CardNumber,
		&c.GradedCompany, &c.Grade, &c.SerialNumber, &c.Flags,
		&c.EstimatedPriceCAD, &c.PriceSource, &c.CreatedAt,
	)
}
