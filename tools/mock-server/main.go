// Package main implements a mock backend server for local development.
// It simulates the eBay OAuth token endpoint and Browse API search from
// JSON fixtures, plus a Supabase-style storage API backed by memory, so
// the full upload flow runs without real credentials.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

type browseAPIResponse struct {
	ItemSummaries []json.RawMessage `json:"itemSummaries"`
	Total         int               `json:"total"`
	Offset        int               `json:"offset"`
	Limit         int               `json:"limit"`
	Next          string            `json:"next"`
}

type itemSummary struct {
	Title string `json:"title"`
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/search_response.json", "path to search response fixture")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fixture, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "items", len(fixture.ItemSummaries))

	objects := newObjectStore()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /identity/v1/oauth2/token", tokenHandler(logger))
	mux.HandleFunc("GET /buy/browse/v1/item_summary/search", searchHandler(logger, fixture))
	mux.HandleFunc("POST /storage/v1/object/list/{bucket}", listHandler(logger, objects))
	mux.HandleFunc("POST /storage/v1/object/{bucket}/{key...}", uploadHandler(logger, objects))
	mux.HandleFunc("GET /storage/v1/object/public/{bucket}/{key...}", publicHandler(logger, objects))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock backend server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixture(path string) (*browseAPIResponse, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var resp browseAPIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &resp, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func tokenHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Validate Basic Auth header is present (don't verify creds).
		if _, _, ok := r.BasicAuth(); !ok {
			logger.Warn("token request missing Basic Auth header")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
			json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_client",
				"error_description": "client authentication failed",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "mock-token-v1-" + strconv.FormatInt(int64(os.Getpid()), 16),
			"expires_in":   7200,
			"token_type":   "Application Access Token",
		})
		logger.Info("issued mock token")
	}
}

func searchHandler(logger *slog.Logger, fixture *browseAPIResponse) http.HandlerFunc {
	// Pre-parse titles for filtering.
	type indexedItem struct {
		raw   json.RawMessage
		title string
	}
	items := make([]indexedItem, 0, len(fixture.ItemSummaries))
	for _, raw := range fixture.ItemSummaries {
		var s itemSummary
		//nolint:errcheck,gosec // fixture data is trusted; title extraction is best-effort
		json.Unmarshal(raw, &s)
		items = append(items, indexedItem{raw: raw, title: strings.ToLower(s.Title)})
	}

	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.ToLower(r.URL.Query().Get("q"))
		limitStr := r.URL.Query().Get("limit")
		offsetStr := r.URL.Query().Get("offset")

		limit := 50
		if limitStr != "" {
			if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
				limit = v
			}
		}
		offset := 0
		if offsetStr != "" {
			if v, err := strconv.Atoi(offsetStr); err == nil && v >= 0 {
				offset = v
			}
		}

		// Filter items by query substring match on title.
		var matched []json.RawMessage
		for _, item := range items {
			if q == "" || strings.Contains(item.title, q) {
				matched = append(matched, item.raw)
			}
		}

		total := len(matched)

		// Apply pagination.
		if offset >= len(matched) {
			matched = nil
		} else {
			end := min(offset+limit, len(matched))
			matched = matched[offset:end]
		}

		next := ""
		if offset+limit < total {
			next = fmt.Sprintf("/buy/browse/v1/item_summary/search?q=%s&offset=%d&limit=%d",
				r.URL.Query().Get("q"), offset+limit, limit)
		}

		resp := browseAPIResponse{
			ItemSummaries: matched,
			Total:         total,
			Offset:        offset,
			Limit:         limit,
			Next:          next,
		}

		// Return empty array instead of null when no results.
		if resp.ItemSummaries == nil {
			resp.ItemSummaries = []json.RawMessage{}
		}

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(resp)
		logger.Info("search", "query", q, "matched", total, "returned", len(matched), "offset", offset, "limit", limit)
	}
}

// objectStore is an in-memory stand-in for a storage bucket. Keys are
// "bucket/objectKey".
type objectStore struct {
	mu      sync.Mutex
	objects map[string]storedObject
}

type storedObject struct {
	contentType string
	data        []byte
}

func newObjectStore() *objectStore {
	return &objectStore{objects: make(map[string]storedObject)}
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeStorageError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(map[string]string{
		"statusCode": strconv.Itoa(status),
		"error":      code,
		"message":    message,
	})
}

func uploadHandler(logger *slog.Logger, store *objectStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if bearerToken(r) == "" {
			writeStorageError(w, http.StatusUnauthorized, "Unauthorized", "missing service key")
			return
		}

		bucket := r.PathValue("bucket")
		key := r.PathValue("key")
		fullKey := bucket + "/" + key

		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeStorageError(w, http.StatusBadRequest, "BadRequest", "reading request body")
			return
		}

		store.mu.Lock()
		defer store.mu.Unlock()

		// Writes never upsert, matching the x-upsert: false contract.
		if _, exists := store.objects[fullKey]; exists {
			logger.Warn("duplicate object rejected", "key", fullKey)
			writeStorageError(w, http.StatusConflict, "Duplicate", "The resource already exists")
			return
		}

		store.objects[fullKey] = storedObject{
			contentType: r.Header.Get("Content-Type"),
			data:        data,
		}

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(map[string]string{"Key": fullKey})
		logger.Info("stored object", "key", fullKey, "bytes", len(data))
	}
}

func listHandler(logger *slog.Logger, store *objectStore) http.HandlerFunc {
	type listRequest struct {
		Prefix string `json:"prefix"`
		Limit  int    `json:"limit"`
		Offset int    `json:"offset"`
	}
	type listEntry struct {
		Name string `json:"name"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if bearerToken(r) == "" {
			writeStorageError(w, http.StatusUnauthorized, "Unauthorized", "missing service key")
			return
		}

		bucket := r.PathValue("bucket")

		var req listRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeStorageError(w, http.StatusBadRequest, "BadRequest", "invalid list request body")
			return
		}

		store.mu.Lock()
		defer store.mu.Unlock()

		// Names come back relative to the requested prefix, like the real
		// storage API.
		entries := []listEntry{}
		scope := bucket + "/" + req.Prefix
		for key := range store.objects {
			if strings.HasPrefix(key, scope) {
				entries = append(entries, listEntry{Name: strings.TrimPrefix(key, scope)})
			}
		}

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(entries)
		logger.Info("listed objects", "bucket", bucket, "prefix", req.Prefix, "matched", len(entries))
	}
}

func publicHandler(logger *slog.Logger, store *objectStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fullKey := r.PathValue("bucket") + "/" + r.PathValue("key")

		store.mu.Lock()
		obj, ok := store.objects[fullKey]
		store.mu.Unlock()

		if !ok {
			writeStorageError(w, http.StatusNotFound, "NotFound", "object not found")
			return
		}

		w.Header().Set("Content-Type", obj.contentType)
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		w.Write(obj.data)
		logger.Debug("served object", "key", fullKey, "bytes", len(obj.data))
	}
}
