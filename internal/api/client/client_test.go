package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/cardstash/cardstash/pkg/types"
)

func TestClient_PriceLookup(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/price-lookup", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "connor mcdavid rc", body["query"])
		assert.InDelta(t, 12, body["limit"], 0.001)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"marketplace": "EBAY_CA",
			"query": "connor mcdavid rc",
			"medianPriceCAD": 120.5,
			"results": []
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	result, err := c.PriceLookup(context.Background(), "connor mcdavid rc", 12)
	require.NoError(t, err)

	assert.Equal(t, "EBAY_CA", result.Marketplace)
	require.NotNil(t, result.MedianPriceCAD)
	assert.InDelta(t, 120.5, *result.MedianPriceCAD, 0.001)
}

func TestClient_PriceLookup_OmitsZeroLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasLimit := body["limit"]
		assert.False(t, hasLimit, "zero limit should be omitted so the server applies its default")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"marketplace":"EBAY_CA","query":"x","results":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.PriceLookup(context.Background(), "x", 0)
	require.NoError(t, err)
}

func TestClient_PriceLookup_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"marketplace request failed"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.PriceLookup(context.Background(), "x", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
	assert.Contains(t, err.Error(), "marketplace request failed")
}

func TestClient_Upload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "scan.jpg", hdr.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("image bytes"), data)

		var meta domain.CardMeta
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("meta")), &meta))
		assert.Equal(t, "Connor McDavid", meta.Player)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"card":{"id":"abc","player":"Connor McDavid"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	card, err := c.Upload(
		context.Background(),
		"scan.jpg", "image/jpeg",
		[]byte("image bytes"),
		domain.CardMeta{Player: "Connor McDavid"},
	)
	require.NoError(t, err)
	assert.Equal(t, "abc", card.ID)
	assert.Equal(t, "Connor McDavid", card.Player)
}

func TestClient_Upload_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"image upload failed"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Upload(context.Background(), "x.jpg", "", []byte("x"), domain.CardMeta{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image upload failed")
}

func TestClient_ListCards(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/cards", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cards":[{"id":"1"},{"id":"2"}],"total":2}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	list, err := c.ListCards(context.Background(), 25, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Len(t, list.Cards, 2)
}

func TestClient_GetCollectionValue(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/collection/value", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_cad":150.5,"cards":3}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	v, err := c.GetCollectionValue(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 150.5, v.TotalCAD, 0.001)
	assert.Equal(t, 3, v.Cards)
}

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1")
	_, err := c.GetCollectionValue(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}
