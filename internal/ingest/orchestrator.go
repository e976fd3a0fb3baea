// Package ingest drives the client-side upload flow: preview, best-effort
// price lookup, heuristic tagging, then the save call. One flow runs at a
// time; a Session is not safe for concurrent uploads and does not pretend
// to be.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cardstash/cardstash/internal/pricing"
	"github.com/cardstash/cardstash/pkg/tagger"
	domain "github.com/cardstash/cardstash/pkg/types"
)

// lookupLimit is the fixed number of comparable listings requested during
// ingestion.
const lookupLimit = 12

// State is the orchestrator's position in the upload flow.
type State int

const (
	StateIdle State = iota
	StatePreparingPreview
	StateLookingUpPrice
	StateSaving
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparingPreview:
		return "preparing preview"
	case StateLookingUpPrice:
		return "looking up price"
	case StateSaving:
		return "saving"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SaveError is the fatal outcome of a failed save call. Lookup failures
// never produce it; only the save step does.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save failed: %v", e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// PriceOutcome is the tagged result of the best-effort lookup step. Either
// MedianCAD is set, or it is nil with Unavailable carrying the reason (a
// lookup failure, or simply no parseable comparables).
type PriceOutcome struct {
	MedianCAD   *float64
	Unavailable string
}

// FormFields are the user-supplied descriptive fields for one upload.
type FormFields struct {
	Sport      string
	Player     string
	Year       string
	Brand      string
	SetName    string
	CardNumber string
}

// Upload is one file plus its form fields.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
	Fields      FormFields
}

// Result is the outcome of one completed flow.
type Result struct {
	Card  *domain.Card
	Guess string
	Price PriceOutcome
}

// Session holds the in-memory collection list built up by successive
// uploads, most recent first.
type Session struct {
	Cards []domain.Card
}

// Total returns the derived sum of present estimates in the session.
func (s *Session) Total() float64 {
	return domain.TotalEstimate(s.Cards)
}

// API is the slice of the HTTP client the orchestrator needs.
type API interface {
	PriceLookup(ctx context.Context, query string, limit int) (*pricing.Result, error)
	Upload(ctx context.Context, fileName, contentType string, data []byte,
		meta domain.CardMeta) (*domain.Card, error)
}

// Orchestrator sequences one upload end-to-end.
type Orchestrator struct {
	api   API
	log   *slog.Logger
	state State
}

// NewOrchestrator creates an Orchestrator over the given API client.
func NewOrchestrator(api API, log *slog.Logger) *Orchestrator {
	return &Orchestrator{api: api, log: log, state: StateIdle}
}

// State returns the current flow position.
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.state = s
	o.log.Debug("ingest state", "state", s.String())
}

// BuildGuess joins the trimmed descriptive fields into a lookup query,
// falling back to the file name when every field is empty.
func BuildGuess(fields FormFields, fileName string) string {
	joined := strings.Join(strings.Fields(strings.Join([]string{
		fields.Year, fields.Player, fields.Brand, fields.SetName, fields.CardNumber,
	}, " ")), " ")
	if joined == "" {
		return fileName
	}
	return joined
}

// Run executes the full flow for one upload. A lookup failure downgrades to
// a no-estimate outcome and the flow continues; a save failure is fatal and
// nothing is added to the session.
func (o *Orchestrator) Run(ctx context.Context, session *Session, up Upload) (*Result, error) {
	// The preview is purely local and cannot fail.
	o.setState(StatePreparingPreview)

	o.setState(StateLookingUpPrice)
	guess := BuildGuess(up.Fields, up.FileName)

	outcome := o.lookupPrice(ctx, guess)

	tags := tagger.Tag(guess)

	meta := domain.CardMeta{
		Sport:             up.Fields.Sport,
		Player:            up.Fields.Player,
		Year:              up.Fields.Year,
		Brand:             up.Fields.Brand,
		SetName:           up.Fields.SetName,
		CardNumber:        up.Fields.CardNumber,
		GradedCompany:     tags.GradedCompany,
		Grade:             tags.Grade,
		SerialNumber:      tags.SerialNumber,
		Flags:             tags.Flags,
		EstimatedPriceCAD: outcome.MedianCAD,
		// The label is fixed regardless of lookup outcome; a nil estimate
		// is the only signal that no price was obtained.
		PriceSource: domain.PriceSourceEbayCA,
	}

	o.setState(StateSaving)
	card, err := o.api.Upload(ctx, up.FileName, up.ContentType, up.Data, meta)
	if err != nil {
		o.setState(StateFailed)
		return nil, &SaveError{Err: err}
	}

	o.setState(StateDone)
	session.Cards = append([]domain.Card{*card}, session.Cards...)

	return &Result{Card: card, Guess: guess, Price: outcome}, nil
}

// lookupPrice asks the server for a median estimate. Failures downgrade to
// an unavailable outcome with the reason recorded.
func (o *Orchestrator) lookupPrice(ctx context.Context, guess string) PriceOutcome {
	result, err := o.api.PriceLookup(ctx, guess, lookupLimit)
	if err != nil {
		o.log.Warn("price lookup failed, saving without estimate",
			"guess", guess, "error", err)
		return PriceOutcome{Unavailable: err.Error()}
	}
	if result.MedianPriceCAD == nil {
		return PriceOutcome{Unavailable: "no comparable listings with parseable prices"}
	}
	return PriceOutcome{MedianCAD: result.MedianPriceCAD}
}
