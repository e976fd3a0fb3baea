package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	domain "github.com/cardstash/cardstash/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printCardsTable(cards []domain.Card, totalCAD float64) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tPLAYER\tYEAR\tBRAND\tFLAGS\tGRADE\tESTIMATE\n")
	for i := range cards {
		c := &cards[i]
		grade := c.Grade
		if grade != "" && c.GradedCompany != "" {
			grade = c.GradedCompany + " " + grade
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID,
			truncate(c.Player, 30),
			c.Year,
			truncate(c.Brand, 20),
			strings.Join(c.Flags, ","),
			grade,
			formatEstimate(c.EstimatedPriceCAD),
		)
	}
	tw.writef("\nTOTAL:\t$%.2f CAD\n", totalCAD)
	return tw.finish()
}

func printCardDetail(c *domain.Card) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%s\n", c.ID)
	tw.writef("Player:\t%s\n", c.Player)
	tw.writef("Year:\t%s\n", c.Year)
	tw.writef("Brand:\t%s\n", c.Brand)
	tw.writef("Set:\t%s\n", c.SetName)
	tw.writef("Card #:\t%s\n", c.CardNumber)
	if c.GradedCompany != "" || c.Grade != "" {
		tw.writef("Grade:\t%s %s\n", c.GradedCompany, c.Grade)
	}
	if c.SerialNumber != "" {
		tw.writef("Serial:\t%s\n", c.SerialNumber)
	}
	tw.writef("Flags:\t%s\n", strings.Join(c.Flags, ", "))
	tw.writef("Estimate:\t%s\n", formatEstimate(c.EstimatedPriceCAD))
	if c.PriceSource != "" {
		tw.writef("Source:\t%s\n", c.PriceSource)
	}
	tw.writef("Image:\t%s\n", c.ImageURL)
	return tw.finish()
}

func formatEstimate(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f CAD", *v)
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
