package pricing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardstash/cardstash/internal/ebay"
	"github.com/cardstash/cardstash/internal/pricing"
)

// fakeClient records the request and returns canned results.
type fakeClient struct {
	gotReq ebay.SearchRequest
	resp   *ebay.SearchResponse
	err    error
}

func (f *fakeClient) Search(_ context.Context, req ebay.SearchRequest) (*ebay.SearchResponse, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func items(prices ...string) []ebay.ItemSummary {
	out := make([]ebay.ItemSummary, 0, len(prices))
	for _, p := range prices {
		out = append(out, ebay.ItemSummary{
			Price: ebay.ItemPrice{Value: p, Currency: "CAD"},
		})
	}
	return out
}

func TestMedian(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prices []float64
		want   float64
		wantOK bool
	}{
		{name: "empty", prices: nil, wantOK: false},
		{name: "single", prices: []float64{5}, want: 5, wantOK: true},
		{name: "odd count", prices: []float64{3, 1, 2}, want: 2, wantOK: true},
		// Even counts take the upper-middle value, not an average.
		{name: "even count upper middle", prices: []float64{40, 10, 30, 20}, want: 30, wantOK: true},
		{name: "two values", prices: []float64{10, 20}, want: 20, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := pricing.Median(tt.prices)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestMedian_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	prices := []float64{40, 10, 30, 20}
	_, _ = pricing.Median(prices)
	assert.Equal(t, []float64{40, 10, 30, 20}, prices)
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: 1},
		{in: -3, want: 1},
		{in: 1, want: 1},
		{in: 12, want: 12},
		{in: 50, want: 50},
		{in: 51, want: 50},
		{in: 1000, want: 50},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pricing.ClampLimit(tt.in), "clamp(%d)", tt.in)
	}
}

func TestParsePrices_DropsUnparseable(t *testing.T) {
	t.Parallel()

	got := pricing.ParsePrices(items("10.00", "", "abc", "20.50", "NaN", "+Inf"))
	assert.Equal(t, []float64{10, 20.5}, got)
}

func TestService_Lookup(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		resp: &ebay.SearchResponse{
			Items: items("40", "10", "30", "20"),
			Total: 4,
		},
	}
	svc := pricing.NewService(client, "EBAY_CA")

	result, err := svc.Lookup(context.Background(), "mcdavid rc", 12)
	require.NoError(t, err)

	assert.Equal(t, "EBAY_CA", result.Marketplace)
	assert.Equal(t, "mcdavid rc", result.Query)
	require.NotNil(t, result.MedianPriceCAD)
	assert.InDelta(t, 30, *result.MedianPriceCAD, 1e-9)
	// Raw results are returned unfiltered.
	assert.Len(t, result.Results, 4)
	assert.Equal(t, 12, client.gotReq.Limit)
}

func TestService_Lookup_ClampsLimit(t *testing.T) {
	t.Parallel()

	client := &fakeClient{resp: &ebay.SearchResponse{}}
	svc := pricing.NewService(client, "EBAY_CA")

	_, err := svc.Lookup(context.Background(), "q", 1000)
	require.NoError(t, err)
	assert.Equal(t, 50, client.gotReq.Limit)

	_, err = svc.Lookup(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, client.gotReq.Limit)
}

func TestService_Lookup_NoParseablePrices(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		resp: &ebay.SearchResponse{Items: items("", "free", "n/a")},
	}
	svc := pricing.NewService(client, "EBAY_CA")

	result, err := svc.Lookup(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Nil(t, result.MedianPriceCAD)
	// Unparseable listings still come back in the raw results.
	assert.Len(t, result.Results, 3)
}

func TestService_Lookup_EmptyResults(t *testing.T) {
	t.Parallel()

	client := &fakeClient{resp: &ebay.SearchResponse{}}
	svc := pricing.NewService(client, "EBAY_CA")

	result, err := svc.Lookup(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Nil(t, result.MedianPriceCAD)
	assert.NotNil(t, result.Results)
	assert.Empty(t, result.Results)
}

func TestService_Lookup_UpstreamErrorPropagates(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: &ebay.UpstreamError{Status: 502, Body: "down"}}
	svc := pricing.NewService(client, "EBAY_CA")

	_, err := svc.Lookup(context.Background(), "q", 5)
	var upErr *ebay.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, 502, upErr.Status)
}
