package ebay

import "fmt"

// AuthError reports a failed client-credentials exchange. It carries the
// upstream status code and response body for diagnostics.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("token exchange failed (status %d): %s", e.Status, e.Body)
}

// UpstreamError reports a non-success response from the Browse API. It
// carries the upstream status code and response body for diagnostics.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("eBay API error (status %d): %s", e.Status, e.Body)
}
