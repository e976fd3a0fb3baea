package ebay

// ItemSummary is a single item from the Browse API search response. Only
// the fields the collection tracker consumes are modelled; results are
// passed through to callers as-is.
type ItemSummary struct {
	ItemID     string      `json:"itemId"`
	Title      string      `json:"title"`
	Price      ItemPrice   `json:"price"`
	ItemWebURL string      `json:"itemWebUrl"`
	Image      *ItemImage  `json:"image,omitempty"`
	Condition  string      `json:"condition,omitempty"`
	Seller     *ItemSeller `json:"seller,omitempty"`
}

// ItemPrice holds eBay price information. Value is the decimal string the
// API returns; parsing happens at the consumer.
type ItemPrice struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// ItemImage holds eBay image information.
type ItemImage struct {
	ImageURL string `json:"imageUrl"`
}

// ItemSeller holds eBay seller information.
type ItemSeller struct {
	Username           string `json:"username"`
	FeedbackPercentage string `json:"feedbackPercentage,omitempty"`
}
