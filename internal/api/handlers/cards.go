package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cardstash/cardstash/internal/collection"
	domain "github.com/cardstash/cardstash/pkg/types"
)

// CardsHandler serves the collection read endpoints.
type CardsHandler struct {
	gateway *collection.Gateway
}

// NewCardsHandler creates a new CardsHandler.
func NewCardsHandler(g *collection.Gateway) *CardsHandler {
	return &CardsHandler{gateway: g}
}

// ListCardsInput is the query for the card list endpoint.
type ListCardsInput struct {
	Limit  int `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Maximum cards to return"`
	Offset int `query:"offset" default:"0" minimum:"0" doc:"Cards to skip"`
}

// ListCardsOutput is the response body for the card list endpoint.
type ListCardsOutput struct {
	Body struct {
		Cards []domain.Card `json:"cards" doc:"Cards, newest first"`
		Total int           `json:"total" doc:"Total cards in the collection"`
	}
}

// ListCards returns stored cards, newest first.
func (h *CardsHandler) ListCards(
	ctx context.Context,
	input *ListCardsInput,
) (*ListCardsOutput, error) {
	cards, total, err := h.gateway.List(ctx, input.Limit, input.Offset)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing cards: " + err.Error())
	}

	out := &ListCardsOutput{}
	out.Body.Cards = cards
	out.Body.Total = total
	return out, nil
}

// CollectionValueOutput is the response body for the collection value
// endpoint.
type CollectionValueOutput struct {
	Body struct {
		TotalCAD float64 `json:"total_cad" doc:"Sum of present estimates in CAD"`
		Cards    int     `json:"cards" doc:"Number of cards in the collection"`
	}
}

// CollectionValue returns the derived collection total. The total is
// computed on read; it is never stored.
func (h *CardsHandler) CollectionValue(
	ctx context.Context,
	_ *struct{},
) (*CollectionValueOutput, error) {
	total, cards, err := h.gateway.Total(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("computing collection value: " + err.Error())
	}

	out := &CollectionValueOutput{}
	out.Body.TotalCAD = total
	out.Body.Cards = cards
	return out, nil
}

// RegisterCardRoutes registers the collection read endpoints with the Huma
// API.
func RegisterCardRoutes(api huma.API, h *CardsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-cards",
		Method:      http.MethodGet,
		Path:        "/api/v1/cards",
		Summary:     "List cards",
		Description: "Returns stored cards, newest first.",
		Tags:        []string{"cards"},
	}, h.ListCards)

	huma.Register(api, huma.Operation{
		OperationID: "collection-value",
		Method:      http.MethodGet,
		Path:        "/api/v1/collection/value",
		Summary:     "Collection value",
		Description: "Returns the derived total of present estimates and the card count.",
		Tags:        []string{"cards"},
	}, h.CollectionValue)
}
