// Package normalize coerces raw table cells into Entry fields. None of the
// helpers fail: a value that does not have the expected shape becomes nil.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/uefiscdi/constants"
)

var (
	issnRE = regexp.MustCompile(`(?i)^\d{4}-\d{3}[\dX]$`)
	digits = regexp.MustCompile(`^\d+$`)
)

// Clean collapses internal whitespace and applies NFC.
func Clean(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// Title returns s in English title case, e.g. "JOURNAL OF TESTING" -> "Journal Of Testing".
// cases.Caser is stateful, so a fresh one is built per call.
func Title(s string) string {
	return cases.Title(language.English).String(Clean(s))
}

// Text returns the title-cased value or nil when s is blank.
func Text(s string) *string {
	s = Title(s)
	if s == "" {
		return nil
	}
	return &s
}

// ISSN returns the uppercased code when s has the NNNN-NNNN shape.
func ISSN(s string) *string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !issnRE.MatchString(s) {
		return nil
	}
	return &s
}

// Quartile returns Q1..Q4, or nil for N/A and anything else.
func Quartile(s string) *string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !constants.IsQuartile(s) {
		return nil
	}
	return &s
}

// Index returns the uppercased citation index code. ok is false when the code
// is outside the known set, which invalidates the whole row.
func Index(s string) (idx *string, ok bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if _, known := constants.LookupIndex(s); !known {
		return nil, false
	}
	return &s, true
}

// Position parses a digit-only token.
func Position(s string) *int {
	s = strings.TrimSpace(s)
	if !digits.MatchString(s) {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// Score parses a finite decimal score. Comma decimal separators are accepted;
// NaN and infinities yield nil.
func Score(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// CategoryIndex splits a combined "Category - INDEX" cell. A cell without the
// separator yields the category alone; an unknown index code yields ok=false.
func CategoryIndex(cell string) (category, index *string, ok bool) {
	cat, idx, found := strings.Cut(cell, " - ")
	if !found {
		return Text(cell), nil, true
	}
	index, ok = Index(idx)
	if !ok {
		return nil, nil, false
	}
	return Text(cat), index, true
}
