// Package domain defines the core business types for cardstash.
package domain

import "time"

// PriceSourceEbayCA is the provenance label recorded on every card saved
// through the ingestion flow. A nil estimate, not a missing label, marks a
// card whose lookup produced nothing.
const PriceSourceEbayCA = "eBay CA (active listings median)"

// Card is a single card in the collection. A Card is immutable once
// created; there is no update-in-place or re-pricing path.
type Card struct {
	ID       string `json:"id"        db:"id"`
	ImageURL string `json:"image_url" db:"image_url"`

	// Descriptive fields, all free text and possibly empty.
	Sport      string `json:"sport"       db:"sport"`
	Player     string `json:"player"      db:"player"`
	Year       string `json:"year"        db:"year"`
	Brand      string `json:"brand"       db:"brand"`
	SetName    string `json:"set_name"    db:"set_name"`
	CardNumber string `json:"card_number" db:"card_number"`

	// Grading / numbering
	GradedCompany string `json:"graded_company" db:"graded_company"`
	Grade         string `json:"grade"          db:"grade"`
	SerialNumber  string `json:"serial_number"  db:"serial_number"`

	// Flags are short tags ("RC", "Auto", "Relic", "Serial") in the order
	// the tagger produced them. Duplicates are not deduplicated.
	Flags []string `json:"flags" db:"flags"`

	// EstimatedPriceCAD is nil when no comparable listings were found or
	// the lookup failed at creation time. It is computed exactly once.
	EstimatedPriceCAD *float64 `json:"estimated_price_cad" db:"estimated_price_cad"`
	PriceSource       string   `json:"price_source"        db:"price_source"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CardMeta is the metadata envelope supplied at upload time, before the
// persistence layer assigns an identifier and image URL.
type CardMeta struct {
	Sport             string   `json:"sport"`
	Player            string   `json:"player"`
	Year              string   `json:"year"`
	Brand             string   `json:"brand"`
	SetName           string   `json:"set_name"`
	CardNumber        string   `json:"card_number"`
	GradedCompany     string   `json:"graded_company"`
	Grade             string   `json:"grade"`
	SerialNumber      string   `json:"serial_number"`
	Flags             []string `json:"flags"`
	EstimatedPriceCAD *float64 `json:"estimated_price_cad"`
	PriceSource       string   `json:"price_source"`
}

// EstimateOrZero returns the estimated price, treating absent as zero.
func (c *Card) EstimateOrZero() float64 {
	if c.EstimatedPriceCAD == nil {
		return 0
	}
	return *c.EstimatedPriceCAD
}

// TotalEstimate sums the present estimates across cards. Totals are always
// derived, never stored.
func TotalEstimate(cards []Card) float64 {
	var total float64
	for i := range cards {
		total += cards[i].EstimateOrZero()
	}
	return total
}
