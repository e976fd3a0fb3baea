package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	colorGreen = 0x2ECC71 // estimate present
	colorGrey  = 0x95A5A6 // no estimate
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title     string              `json:"title"`
	Color     int                 `json:"color"`
	Fields    []discordEmbedField `json:"fields,omitempty"`
	Thumbnail *discordThumbnail   `json:"thumbnail,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordThumbnail struct {
	URL string `json:"url"`
}

// SendCardSaved announces a saved card as a Discord embed.
func (d *DiscordNotifier) SendCardSaved(ctx context.Context, card *CardPayload) error {
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{buildEmbed(card)},
	}
	return d.post(ctx, payload)
}

func buildEmbed(card *CardPayload) discordEmbed {
	title := strings.TrimSpace(
		strings.Join([]string{card.Year, card.Player, card.Brand, card.SetName}, " "),
	)
	if title == "" {
		title = "New card"
	}

	estimate := card.Estimate
	color := colorGreen
	if estimate == "" {
		estimate = "no estimate"
		color = colorGrey
	}

	embed := discordEmbed{
		Title: fmt.Sprintf("Card Saved: %s", title),
		Color: color,
		Fields: []discordEmbedField{
			{Name: "Estimate", Value: estimate, Inline: true},
		},
	}

	if card.CardNumber != "" {
		embed.Fields = append(embed.Fields,
			discordEmbedField{Name: "Card #", Value: card.CardNumber, Inline: true})
	}
	if card.Grade != "" {
		grade := card.Grade
		if card.GradedCompany != "" {
			grade = card.GradedCompany + " " + grade
		}
		embed.Fields = append(embed.Fields,
			discordEmbedField{Name: "Grade", Value: grade, Inline: true})
	}
	if len(card.Flags) > 0 {
		embed.Fields = append(embed.Fields,
			discordEmbedField{Name: "Flags", Value: strings.Join(card.Flags, ", "), Inline: true})
	}
	if card.PriceSource != "" {
		embed.Fields = append(embed.Fields,
			discordEmbedField{Name: "Source", Value: card.PriceSource, Inline: false})
	}

	if card.ImageURL != "" {
		embed.Thumbnail = &discordThumbnail{URL: card.ImageURL}
	}

	return embed
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
