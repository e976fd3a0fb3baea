package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cardstash/cardstash/internal/ebay"
	"github.com/cardstash/cardstash/internal/pricing"
)

// PriceLookupHandler answers ad-hoc price estimate requests.
type PriceLookupHandler struct {
	pricing *pricing.Service
}

// NewPriceLookupHandler creates a new PriceLookupHandler.
func NewPriceLookupHandler(p *pricing.Service) *PriceLookupHandler {
	return &PriceLookupHandler{pricing: p}
}

// priceLookupRequest is the request body for POST /price-lookup. Limit is a
// pointer so an absent limit and an explicit zero are distinguishable: absent
// means the default, zero is clamped up to one.
type priceLookupRequest struct {
	Query string `json:"query"`
	Limit *int   `json:"limit"`
}

// Lookup handles POST /price-lookup.
func (h *PriceLookupHandler) Lookup(c echo.Context) error {
	var req priceLookupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "query is required",
		})
	}

	limit := pricing.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	result, err := h.pricing.Lookup(c.Request().Context(), req.Query, limit)
	if err != nil {
		return upstreamErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// upstreamErrorResponse maps marketplace failures onto 502 with the
// upstream status and body, and anything unrecognized onto 500.
func upstreamErrorResponse(c echo.Context, err error) error {
	var authErr *ebay.AuthError
	if errors.As(err, &authErr) {
		return c.JSON(http.StatusBadGateway, map[string]any{
			"error":           "marketplace authentication failed",
			"upstream_status": authErr.Status,
			"upstream_body":   authErr.Body,
		})
	}

	var upErr *ebay.UpstreamError
	if errors.As(err, &upErr) {
		return c.JSON(http.StatusBadGateway, map[string]any{
			"error":           "marketplace request failed",
			"upstream_status": upErr.Status,
			"upstream_body":   upErr.Body,
		})
	}

	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "unknown error",
	})
}
