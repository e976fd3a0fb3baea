// Package notify defines the notification interface and implementations
// for card-saved announcements.
package notify

import "context"

// CardPayload contains the data needed to announce a newly saved card.
type CardPayload struct {
	Player        string
	Year          string
	Brand         string
	SetName       string
	CardNumber    string
	Grade         string
	GradedCompany string
	Flags         []string
	ImageURL      string
	// Estimate is a preformatted price string like "$120.50 CAD", or empty
	// when no estimate was computed.
	Estimate    string
	PriceSource string
}

// Notifier defines the interface for announcing saved cards.
type Notifier interface {
	SendCardSaved(ctx context.Context, card *CardPayload) error
}
