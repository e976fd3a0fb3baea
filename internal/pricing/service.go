// Package pricing estimates a card's market value from active marketplace
// listings: query, filter out unparseable prices, take the median.
package pricing

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/cardstash/cardstash/internal/ebay"
	"github.com/cardstash/cardstash/internal/metrics"
)

const (
	minLimit = 1
	maxLimit = 50

	// DefaultLimit applies when a caller does not specify a result limit.
	DefaultLimit = 10
)

// Result is the outcome of one price lookup. MedianPriceCAD is nil when no
// listing carried a parseable price. Results holds the raw, unfiltered
// listing summaries alongside the computed median.
type Result struct {
	Marketplace    string             `json:"marketplace"`
	Query          string             `json:"query"`
	MedianPriceCAD *float64           `json:"medianPriceCAD"`
	Results        []ebay.ItemSummary `json:"results"`
}

// Service performs price lookups against a marketplace client. A fresh
// credential is obtained per search by the underlying client; nothing is
// shared between calls.
type Service struct {
	client      ebay.Client
	marketplace string
}

// NewService creates a lookup service labelled with the marketplace scope
// it searches (e.g. "EBAY_CA").
func NewService(client ebay.Client, marketplace string) *Service {
	return &Service{client: client, marketplace: marketplace}
}

// Lookup searches for comparable active listings and summarizes their
// prices into a median estimate. The limit is clamped to [1,50]. Upstream
// failures are returned as-is (wrapped); there is no retry.
func (s *Service) Lookup(ctx context.Context, query string, limit int) (*Result, error) {
	resp, err := s.client.Search(ctx, ebay.SearchRequest{
		Query: query,
		Limit: ClampLimit(limit),
	})
	if err != nil {
		metrics.LookupFailuresTotal.Inc()
		return nil, fmt.Errorf("searching marketplace: %w", err)
	}

	items := resp.Items
	if items == nil {
		items = []ebay.ItemSummary{}
	}

	result := &Result{
		Marketplace: s.marketplace,
		Query:       query,
		Results:     items,
	}

	if median, ok := Median(ParsePrices(items)); ok {
		result.MedianPriceCAD = &median
		metrics.LookupMedianCAD.Observe(median)
	}

	return result, nil
}

// ClampLimit clamps a requested result limit to [1,50].
func ClampLimit(limit int) int {
	if limit < minLimit {
		return minLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// ParsePrices extracts the numeric price of each listing summary.
// Missing, unparseable, or non-finite values are dropped, never treated
// as zero.
func ParsePrices(items []ebay.ItemSummary) []float64 {
	prices := make([]float64, 0, len(items))
	for i := range items {
		v, err := strconv.ParseFloat(items[i].Price.Value, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		prices = append(prices, v)
	}
	return prices
}

// Median returns the element at index floor(n/2) of the ascending-sorted
// prices: for even n this is the upper-middle value, not an average of the
// two middle values. Kept for compatibility with existing stored
// estimates. Returns false when prices is empty.
func Median(prices []float64) (float64, bool) {
	if len(prices) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2], true
}
