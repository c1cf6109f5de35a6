package grammar

import (
	"regexp"
	"strings"
)

// DefaultMaxSpan is how many consecutive lines a header block may occupy.
const DefaultMaxSpan = 4

// identifierField marks a data row: header lines never carry an ISSN or its N/A placeholder.
var identifierField = regexp.MustCompile(`(?i)\b\d{4}-\d{3}[\dX]\b|\bN/A\b`)

// Fragment is one required piece of a header: a literal substring or a regexp.
type Fragment struct {
	Literal string
	Pattern *regexp.Regexp
}

// Lit matches s anywhere in a line, case-sensitively.
func Lit(s string) Fragment { return Fragment{Literal: s} }

// Re matches a compiled expression anywhere in a line.
func Re(expr string) Fragment { return Fragment{Pattern: regexp.MustCompile(expr)} }

func (f Fragment) Match(line string) bool {
	if f.Pattern != nil {
		return f.Pattern.MatchString(line)
	}
	return f.Literal != "" && strings.Contains(line, f.Literal)
}

func (f Fragment) String() string {
	if f.Pattern != nil {
		return f.Pattern.String()
	}
	return f.Literal
}

// Header is the fingerprint of a table header, possibly split over a few lines.
type Header struct {
	Name      string
	Fragments []Fragment
	MaxSpan   int
}

// Locate returns the index of the first content line after the header block.
// The block is a run of at most MaxSpan lines, each matching some fragment,
// that together match every fragment; it is then extended over any directly
// following lines that still match, stopping at the first line that carries an
// ISSN-shaped field. When no header is found the offset is 0.
func (h *Header) Locate(lines []string) (offset int, found bool) {
	if h == nil || len(h.Fragments) == 0 {
		return 0, false
	}
	span := h.MaxSpan
	if span <= 0 {
		span = DefaultMaxSpan
	}

	for start := range lines {
		if !h.matchesAny(lines[start]) {
			continue
		}

		seen := make([]bool, len(h.Fragments))
		remaining := len(h.Fragments)
		for j := start; j < len(lines) && j-start < span && h.matchesAny(lines[j]); j++ {
			for k, f := range h.Fragments {
				if !seen[k] && f.Match(lines[j]) {
					seen[k] = true
					remaining--
				}
			}
			if remaining == 0 {
				end := j + 1
				for end < len(lines) && h.matchesAny(lines[end]) && !identifierField.MatchString(lines[end]) {
					end++
				}
				return end, true
			}
		}
	}

	return 0, false
}

func (h *Header) matchesAny(line string) bool {
	for _, f := range h.Fragments {
		if f.Match(line) {
			return true
		}
	}
	return false
}

// Header2024 is the column row of the 2024 JCR zone document. Case matches the PDF.
var Header2024 = Header{
	Name: "zone-2024",
	Fragments: []Fragment{
		Lit("Journal name"),
		Lit("ISSN"),
		Lit("eISSN"),
		Lit("Category"),
		Lit("Edition"),
		Lit("JIF Quartile"),
		Lit("AIS Quartile"),
	},
	MaxSpan: DefaultMaxSpan,
}

// Header2023 matches the 2023 zone lists, whose headers appear in English or Romanian.
var Header2023 = Header{
	Name: "zone-2023",
	Fragments: []Fragment{
		Re(`\bISSN\b`),
		Re(`(?i)\be-?ISSN\b`),
		Re(`(?i)\b(quartile|quartila|cuartil[aă]?|zona)\b`),
		Re(`(?i)\b(position|pozi[tțţ]i[ae]?|rank)\b`),
	},
	MaxSpan: DefaultMaxSpan,
}
