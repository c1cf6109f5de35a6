// Package pdftext turns rendered PDF pages into raw text lines. Fragments keep
// their layout coordinates so callers can rebuild row boundaries themselves.
package pdftext

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Fragment is one painted run of text. Y is the baseline in the page's own
// coordinate system; only differences between fragments are meaningful.
type Fragment struct {
	Text     string
	X, Y     float64
	Width    float64
	FontSize float64
}

const (
	// baselineRatio of the font size a baseline may drift and stay on the same line.
	baselineRatio = 0.5
	// spaceRatio of the font size that counts as a word gap (half a typical space).
	spaceRatio = 0.125
	// fallbackTolerance is used when the font size is unknown.
	fallbackTolerance = 1.0
)

// Lines coalesces fragments into lines in paint order. A new line starts when
// the baseline jumps by more than half the font size. Lines are trimmed,
// NFC-normalised and empty ones dropped.
func Lines(frags []Fragment) []string {
	var (
		out  []string
		b    strings.Builder
		prev *Fragment
	)

	flush := func() {
		if s := norm.NFC.String(strings.TrimSpace(b.String())); s != "" {
			out = append(out, s)
		}
		b.Reset()
		prev = nil
	}

	for i := range frags {
		f := &frags[i]
		if f.Text == "" {
			continue
		}
		if prev != nil && math.Abs(f.Y-prev.Y) > lineTolerance(prev, f) {
			flush()
		}
		if prev != nil && needsSpace(prev, f) {
			b.WriteByte(' ')
		}
		b.WriteString(f.Text)
		prev = f
	}
	flush()

	return out
}

func lineTolerance(a, b *Fragment) float64 {
	size := math.Max(a.FontSize, b.FontSize)
	if size <= 0 {
		return fallbackTolerance
	}
	return baselineRatio * size
}

func needsSpace(prev, cur *Fragment) bool {
	last, _ := utf8.DecodeLastRuneInString(prev.Text)
	first, _ := utf8.DecodeRuneInString(cur.Text)
	if unicode.IsSpace(last) || unicode.IsSpace(first) {
		return false
	}
	// word-level fragments without widths are always separate words
	if prev.Width <= 0 {
		return true
	}

	threshold := spaceRatio * math.Max(prev.FontSize, cur.FontSize)
	if threshold <= 0 {
		threshold = fallbackTolerance
	}
	return cur.X-(prev.X+prev.Width) >= threshold
}
