// Package storage provides a client for the Supabase storage HTTP API:
// bucket writes with upsert disabled, public URL resolution, and object
// listing for the audit sweep.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// StorageError reports a failed object store operation. It carries the
// backend status code and response body for diagnostics.
type StorageError struct {
	Status int
	Body   string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("object store error (status %d): %s", e.Status, e.Body)
}

// Client talks to one storage bucket. Writes never upsert: a duplicate key
// fails the write.
type Client struct {
	baseURL    string
	serviceKey string
	bucket     string
	client     *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates a storage client for the given bucket.
func NewClient(baseURL, serviceKey, bucket string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload writes an object under key with the declared content type.
// Upsert is disabled: writing an existing key fails with *StorageError.
func (c *Client) Upload(ctx context.Context, key, contentType string, data []byte) error {
	u := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body) //nolint:errcheck // best-effort diagnostics
		return &StorageError{Status: resp.StatusCode, Body: string(body)}
	}

	return nil
}

// PublicURL resolves the publicly reachable URL for a stored object.
func (c *Client) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, key)
}

type listRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type listEntry struct {
	Name string `json:"name"`
}

// List returns the names of objects under prefix, used by the audit sweep
// to count orphaned images. The storage API caps a single page at 1000
// entries, which is plenty for a personal collection.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	u := fmt.Sprintf("%s/storage/v1/object/list/%s", c.baseURL, c.bucket)

	payload, err := json.Marshal(listRequest{Prefix: prefix, Limit: 1000})
	if err != nil {
		return nil, fmt.Errorf("encoding list request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating list request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing list request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading list response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StorageError{Status: resp.StatusCode, Body: string(body)}
	}

	var entries []listEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parsing list response: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}
