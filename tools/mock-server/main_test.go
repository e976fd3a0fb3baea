package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func loadTestFixture(t *testing.T) *browseAPIResponse {
	t.Helper()
	path := filepath.Join("testdata", "search_response.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	var resp browseAPIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return &resp
}

func TestLoadFixture(t *testing.T) {
	fixture := loadTestFixture(t)
	if len(fixture.ItemSummaries) == 0 {
		t.Fatal("expected items in fixture")
	}
	if fixture.Total != len(fixture.ItemSummaries) {
		t.Errorf("total=%d, want %d", fixture.Total, len(fixture.ItemSummaries))
	}
}

func TestTokenHandler_Success(t *testing.T) {
	handler := tokenHandler(testLogger())
	req := httptest.NewRequest(http.MethodPost, "/identity/v1/oauth2/token", http.NoBody)
	req.SetBasicAuth("app-id", "cert-id")
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["access_token"] == nil || resp["access_token"] == "" {
		t.Error("expected non-empty access_token")
	}
	if resp["token_type"] != "Application Access Token" {
		t.Errorf("token_type=%v, want Application Access Token", resp["token_type"])
	}
	if resp["expires_in"] != float64(7200) {
		t.Errorf("expires_in=%v, want 7200", resp["expires_in"])
	}
}

func TestTokenHandler_MissingAuth(t *testing.T) {
	handler := tokenHandler(testLogger())
	req := httptest.NewRequest(http.MethodPost, "/identity/v1/oauth2/token", http.NoBody)
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusUnauthorized)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["error"] != "invalid_client" {
		t.Errorf("error=%s, want invalid_client", resp["error"])
	}
}

func TestSearchHandler_AllItems(t *testing.T) {
	fixture := loadTestFixture(t)
	handler := searchHandler(testLogger(), fixture)
	req := httptest.NewRequest(http.MethodGet, "/buy/browse/v1/item_summary/search", http.NoBody)
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}

	var resp browseAPIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Total != len(fixture.ItemSummaries) {
		t.Errorf("total=%d, want %d", resp.Total, len(fixture.ItemSummaries))
	}
	if len(resp.ItemSummaries) != len(fixture.ItemSummaries) {
		t.Errorf("items=%d, want %d", len(resp.ItemSummaries), len(fixture.ItemSummaries))
	}
}

func TestSearchHandler_QueryFilter(t *testing.T) {
	fixture := loadTestFixture(t)
	handler := searchHandler(testLogger(), fixture)
	req := httptest.NewRequest(http.MethodGet, "/buy/browse/v1/item_summary/search?q=mcdavid", http.NoBody)
	w := httptest.NewRecorder()

	handler(w, req)

	var resp browseAPIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Total == 0 {
		t.Error("expected McDavid results")
	}
	for _, raw := range resp.ItemSummaries {
		var item itemSummary
		_ = json.Unmarshal(raw, &item)
		if !strings.Contains(strings.ToLower(item.Title), "mcdavid") {
			t.Errorf("title %q does not match query", item.Title)
		}
	}
	if resp.Total >= len(fixture.ItemSummaries) {
		t.Error("expected filter to reduce results")
	}
}

func TestSearchHandler_Pagination(t *testing.T) {
	fixture := loadTestFixture(t)
	handler := searchHandler(testLogger(), fixture)
	req := httptest.NewRequest(http.MethodGet, "/buy/browse/v1/item_summary/search?limit=3&offset=0", http.NoBody)
	w := httptest.NewRecorder()

	handler(w, req)

	var resp browseAPIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.ItemSummaries) != 3 {
		t.Errorf("items=%d, want 3", len(resp.ItemSummaries))
	}
	if resp.Total != len(fixture.ItemSummaries) {
		t.Errorf("total=%d, want %d", resp.Total, len(fixture.ItemSummaries))
	}
	if resp.Next == "" {
		t.Error("expected non-empty next for paginated response")
	}
}

func TestSearchHandler_PaginationOffset(t *testing.T) {
	fixture := loadTestFixture(t)
	handler := searchHandler(testLogger(), fixture)
	total := len(fixture.ItemSummaries)

	req := httptest.NewRequest(http.MethodGet, "/buy/browse/v1/item_summary/search?limit=50&offset=15", http.NoBody)
	w := httptest.NewRecorder()
	handler(w, req)

	var resp browseAPIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.ItemSummaries) != total-15 {
		t.Errorf("items=%d, want %d", len(resp.ItemSummaries), total-15)
	}
	if resp.Next != "" {
		t.Error("expected empty next when all items returned")
	}
}

func TestSearchHandler_MultiWordQuery(t *testing.T) {
	fixture := loadTestFixture(t)
	handler := searchHandler(testLogger(), fixture)
	req := httptest.NewRequest(http.MethodGet, "/buy/browse/v1/item_summary/search?q=Connor+McDavid", http.NoBody)
	w := httptest.NewRecorder()

	handler(w, req)

	var resp browseAPIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Total == 0 {
		t.Error("expected multi-word query to match titles containing the phrase")
	}
}

func TestSearchHandler_NoResults(t *testing.T) {
	fixture := loadTestFixture(t)
	handler := searchHandler(testLogger(), fixture)
	req := httptest.NewRequest(http.MethodGet, "/buy/browse/v1/item_summary/search?q=nonexistent_xyz_card", http.NoBody)
	w := httptest.NewRecorder()

	handler(w, req)

	var resp browseAPIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Total != 0 {
		t.Errorf("total=%d, want 0", resp.Total)
	}
	if resp.ItemSummaries == nil {
		t.Error("expected empty array, got nil")
	}
	if len(resp.ItemSummaries) != 0 {
		t.Errorf("items=%d, want 0", len(resp.ItemSummaries))
	}
}

func uploadRequest(bucket, key string, body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/storage/v1/object/"+bucket+"/"+key, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer test-service-key")
	req.Header.Set("Content-Type", "image/jpeg")
	req.SetPathValue("bucket", bucket)
	req.SetPathValue("key", key)
	return req
}

func TestUploadHandler_StoresObject(t *testing.T) {
	store := newObjectStore()
	handler := uploadHandler(testLogger(), store)

	w := httptest.NewRecorder()
	handler(w, uploadRequest("cards", "cards/1700000000000_front.jpg", []byte("jpeg-bytes")))

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["Key"] != "cards/cards/1700000000000_front.jpg" {
		t.Errorf("Key=%s, want cards/cards/1700000000000_front.jpg", resp["Key"])
	}
}

func TestUploadHandler_RejectsDuplicate(t *testing.T) {
	store := newObjectStore()
	handler := uploadHandler(testLogger(), store)

	w := httptest.NewRecorder()
	handler(w, uploadRequest("cards", "cards/1_scan.jpg", []byte("first")))
	if w.Code != http.StatusOK {
		t.Fatalf("first upload status=%d, want %d", w.Code, http.StatusOK)
	}

	w = httptest.NewRecorder()
	handler(w, uploadRequest("cards", "cards/1_scan.jpg", []byte("second")))
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate status=%d, want %d", w.Code, http.StatusConflict)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["error"] != "Duplicate" {
		t.Errorf("error=%s, want Duplicate", resp["error"])
	}
}

func TestUploadHandler_MissingAuth(t *testing.T) {
	store := newObjectStore()
	handler := uploadHandler(testLogger(), store)

	req := uploadRequest("cards", "cards/2_scan.jpg", []byte("data"))
	req.Header.Del("Authorization")
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusUnauthorized)
	}
	if len(store.objects) != 0 {
		t.Errorf("objects stored=%d, want 0", len(store.objects))
	}
}

func TestListHandler_PrefixRelativeNames(t *testing.T) {
	store := newObjectStore()
	upload := uploadHandler(testLogger(), store)
	for _, key := range []string{"cards/1_a.jpg", "cards/2_b.jpg", "other/3_c.jpg"} {
		w := httptest.NewRecorder()
		upload(w, uploadRequest("cards", key, []byte("x")))
		if w.Code != http.StatusOK {
			t.Fatalf("seeding %s: status=%d", key, w.Code)
		}
	}

	handler := listHandler(testLogger(), store)
	body, _ := json.Marshal(map[string]any{"prefix": "cards/", "limit": 1000})
	req := httptest.NewRequest(http.MethodPost, "/storage/v1/object/list/cards", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer test-service-key")
	req.SetPathValue("bucket", "cards")
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}

	var entries []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries=%d, want 2", len(entries))
	}
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
	}
	if !names["1_a.jpg"] || !names["2_b.jpg"] {
		t.Errorf("names=%v, want prefix-relative 1_a.jpg and 2_b.jpg", names)
	}
}

func TestPublicHandler_ServesStoredObject(t *testing.T) {
	store := newObjectStore()
	upload := uploadHandler(testLogger(), store)
	w := httptest.NewRecorder()
	upload(w, uploadRequest("cards", "cards/9_front.jpg", []byte("jpeg-bytes")))
	if w.Code != http.StatusOK {
		t.Fatalf("seeding: status=%d", w.Code)
	}

	handler := publicHandler(testLogger(), store)
	req := httptest.NewRequest(http.MethodGet, "/storage/v1/object/public/cards/cards/9_front.jpg", http.NoBody)
	req.SetPathValue("bucket", "cards")
	req.SetPathValue("key", "cards/9_front.jpg")
	w = httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("content type=%s, want image/jpeg", got)
	}
	data, _ := io.ReadAll(w.Body)
	if string(data) != "jpeg-bytes" {
		t.Errorf("body=%q, want jpeg-bytes", data)
	}
}

func TestPublicHandler_NotFound(t *testing.T) {
	handler := publicHandler(testLogger(), newObjectStore())
	req := httptest.NewRequest(http.MethodGet, "/storage/v1/object/public/cards/missing.jpg", http.NoBody)
	req.SetPathValue("bucket", "cards")
	req.SetPathValue("key", "missing.jpg")
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusNotFound)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
