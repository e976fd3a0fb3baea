// Package client provides a thin HTTP client for the cardstash API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/cardstash/cardstash/internal/pricing"
	domain "github.com/cardstash/cardstash/pkg/types"
)

// Client is a thin HTTP client for the cardstash API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client targeting the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// PriceLookup asks the server for a median estimate.
func (c *Client) PriceLookup(
	ctx context.Context,
	query string,
	limit int,
) (*pricing.Result, error) {
	body := map[string]any{"query": query}
	if limit > 0 {
		body["limit"] = limit
	}

	var result pricing.Result
	if err := c.post(ctx, "/price-lookup", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// uploadResponse is the body of a successful POST /upload.
type uploadResponse struct {
	OK   bool         `json:"ok"`
	Card *domain.Card `json:"card"`
}

// Upload sends a card photo plus its metadata envelope as multipart form
// data and returns the saved card.
func (c *Client) Upload(
	ctx context.Context,
	fileName, contentType string,
	data []byte,
	meta domain.CardMeta,
) (*domain.Card, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	if contentType == "" {
		contentType = "image/jpeg"
	}

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	hdr.Set("Content-Type", contentType)

	part, err := w.CreatePart(hdr)
	if err != nil {
		return nil, fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("writing file part: %w", err)
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshaling meta: %w", err)
	}
	if err := w.WriteField("meta", string(metaJSON)); err != nil {
		return nil, fmt.Errorf("writing meta part: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/upload", buf,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isConnectionRefused(err) {
			return nil, fmt.Errorf("API server not running at %s", c.baseURL)
		}
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("API error (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	var out uploadResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return out.Card, nil
}

// CardList is the body of GET /api/v1/cards.
type CardList struct {
	Cards []domain.Card `json:"cards"`
	Total int           `json:"total"`
}

// ListCards returns stored cards, newest first.
func (c *Client) ListCards(ctx context.Context, limit, offset int) (*CardList, error) {
	path := fmt.Sprintf("/api/v1/cards?limit=%d&offset=%d", limit, offset)

	var out CardList
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CollectionValue is the body of GET /api/v1/collection/value.
type CollectionValue struct {
	TotalCAD float64 `json:"total_cad"`
	Cards    int     `json:"cards"`
}

// GetCollectionValue returns the derived collection total.
func (c *Client) GetCollectionValue(ctx context.Context) (*CollectionValue, error) {
	var out CollectionValue
	if err := c.get(ctx, "/api/v1/collection/value", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// get performs a GET request and decodes the JSON response into dst.
func (c *Client) get(ctx context.Context, path string, dst any) error {
	return c.do(ctx, http.MethodGet, path, nil, dst)
}

// post performs a POST request with a JSON body and decodes the response into dst.
func (c *Client) post(ctx context.Context, path string, body, dst any) error {
	return c.do(ctx, http.MethodPost, path, body, dst)
}

func (c *Client) do(ctx context.Context, method, path string, body, dst any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isConnectionRefused(err) {
			return fmt.Errorf("API server not running at %s", c.baseURL)
		}
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("API error (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	if dst != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, dst); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

func isConnectionRefused(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connect: connection refused")
}
