// Package ebay provides an eBay Browse API client abstracted behind
// interfaces for testability.
package ebay

import (
	"context"
)

// SearchRequest defines the parameters for a marketplace search.
type SearchRequest struct {
	Query string
	Limit int
}

// SearchResponse holds the results of a marketplace search.
type SearchResponse struct {
	Items []ItemSummary
	Total int
}

// Client defines the interface for searching the marketplace.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// TokenProvider defines the interface for obtaining OAuth2 tokens.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}
