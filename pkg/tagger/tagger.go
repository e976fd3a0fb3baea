// Package tagger derives structured card signals (serial numbering,
// rookie/autograph/relic flags, grading company and grade) from a free-text
// description via pattern matching. It is pure: no I/O, no state.
package tagger

import (
	"fmt"
	"regexp"
	"strings"
)

// Result holds the signals extracted from one description.
type Result struct {
	// Flags is produced in a fixed order: Serial, RC, Auto, Relic.
	// Flags can independently co-occur.
	Flags         []string `json:"flags"`
	SerialNumber  string   `json:"serial_number"`
	GradedCompany string   `json:"graded_company"`
	Grade         string   `json:"grade"`
}

var (
	// serialRe matches "05/99" style numbering: 1-3 digits, a slash with
	// optional surrounding whitespace, then 2-4 digits.
	serialRe = regexp.MustCompile(`\b(\d{1,3})\s*/\s*(\d{2,4})\b`)

	// rcRe is deliberately case-sensitive: "RC" is a card-industry
	// abbreviation, "rc" in running text usually is not.
	rcRe     = regexp.MustCompile(`\bRC\b`)
	rookieRe = regexp.MustCompile(`(?i)ROOKIE`)

	autoRe  = regexp.MustCompile(`(?i)AUTO`) // also covers AUTOGRAPH
	relicRe = regexp.MustCompile(`(?i)PATCH|RELIC|JERSEY`)

	companyRe = regexp.MustCompile(`(?i)\b(PSA|SGC|BGS|CGC)\b`)

	// gradeRes is ordered highest value first; the first token found wins
	// regardless of position in the text. "9.5" must precede "9" so the
	// half-grade is not shadowed.
	gradeRes = []*regexp.Regexp{
		regexp.MustCompile(`\b10\b`),
		regexp.MustCompile(`\b9\.5\b`),
		regexp.MustCompile(`\b9\b`),
		regexp.MustCompile(`\b8\.5\b`),
		regexp.MustCompile(`\b8\b`),
		regexp.MustCompile(`\b7\b`),
	}
)

// Tag extracts signals from text. Empty fields mean the corresponding
// pattern did not match.
func Tag(text string) Result {
	r := Result{Flags: []string{}}

	if m := serialRe.FindStringSubmatch(text); m != nil {
		r.SerialNumber = fmt.Sprintf("%s/%s", m[1], m[2])
		r.Flags = append(r.Flags, "Serial")
	}

	if rcRe.MatchString(text) || rookieRe.MatchString(text) {
		r.Flags = append(r.Flags, "RC")
	}
	if autoRe.MatchString(text) {
		r.Flags = append(r.Flags, "Auto")
	}
	if relicRe.MatchString(text) {
		r.Flags = append(r.Flags, "Relic")
	}

	if m := companyRe.FindString(text); m != "" {
		r.GradedCompany = strings.ToUpper(m)
	}

	for _, re := range gradeRes {
		if m := re.FindString(text); m != "" {
			r.Grade = m
			break
		}
	}

	return r
}
