package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardstash/cardstash/internal/storage"
)

func TestClient_Upload(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth, gotContentType, gotUpsert string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotUpsert = r.Header.Get("x-upsert")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := storage.NewClient(srv.URL, "service-key", "card-images")
	err := c.Upload(context.Background(), "cards/123_My_Card.JPG", "image/jpeg", []byte("jpegbytes"))
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/card-images/cards/123_My_Card.JPG", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "image/jpeg", gotContentType)
	assert.Equal(t, "false", gotUpsert)
	assert.Equal(t, []byte("jpegbytes"), gotBody)
}

func TestClient_Upload_DuplicateKeyFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"Duplicate","message":"The resource already exists"}`))
	}))
	defer srv.Close()

	c := storage.NewClient(srv.URL, "k", "card-images")
	err := c.Upload(context.Background(), "cards/dup.jpg", "image/jpeg", nil)

	var stErr *storage.StorageError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, http.StatusConflict, stErr.Status)
	assert.Contains(t, stErr.Body, "already exists")
}

func TestClient_PublicURL(t *testing.T) {
	t.Parallel()

	c := storage.NewClient("https://example.supabase.co/", "k", "card-images")
	assert.Equal(t,
		"https://example.supabase.co/storage/v1/object/public/card-images/cards/1_a.jpg",
		c.PublicURL("cards/1_a.jpg"),
	)
}

func TestClient_List(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage/v1/object/list/card-images", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"prefix":"cards/"`)
		_, _ = w.Write([]byte(`[{"name":"1_a.jpg"},{"name":"2_b.jpg"}]`))
	}))
	defer srv.Close()

	c := storage.NewClient(srv.URL, "k", "card-images")
	names, err := c.List(context.Background(), "cards/")
	require.NoError(t, err)
	assert.Equal(t, []string{"1_a.jpg", "2_b.jpg"}, names)
}

func TestClient_List_BackendError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := storage.NewClient(srv.URL, "k", "card-images")
	_, err := c.List(context.Background(), "cards/")

	var stErr *storage.StorageError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, http.StatusServiceUnavailable, stErr.Status)
}
