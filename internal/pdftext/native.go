package pdftext

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"
)

// NativeReader reads content streams in-process with github.com/ledongthuc/pdf.
type NativeReader struct {
	logger *slog.Logger
}

func NewNativeReader(logger *slog.Logger) *NativeReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &NativeReader{logger: logger}
}

// Pages returns the fragments of every page. The pdf package panics on some
// malformed streams; a page that does is returned empty.
func (n *NativeReader) Pages(ctx context.Context, path string) (pages [][]Fragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	total := r.NumPage()
	pages = make([][]Fragment, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, n.page(r, i))
	}
	return pages, nil
}

func (n *NativeReader) page(r *pdf.Reader, num int) (frags []Fragment) {
	defer func() {
		if rec := recover(); rec != nil {
			n.logger.Debug("pdftext.page.unreadable", "page", num, "panic", rec)
			frags = nil
		}
	}()

	p := r.Page(num)
	if p.V.IsNull() {
		return nil
	}
	texts := p.Content().Text
	frags = make([]Fragment, 0, len(texts))
	for _, t := range texts {
		frags = appendGlyph(frags, Fragment{
			Text:     t.S,
			X:        t.X,
			Y:        t.Y,
			Width:    t.W,
			FontSize: t.FontSize,
		})
	}
	return frags
}

// appendGlyph adds one painted glyph to frags. Fonts without /Widths report a
// zero width and never advance the text matrix, so every glyph of a show-text
// run lands on the same origin. Such glyphs are joined back into a single
// word-level fragment.
func appendGlyph(frags []Fragment, g Fragment) []Fragment {
	if g.Width == 0 && len(frags) > 0 {
		last := &frags[len(frags)-1]
		if last.Width == 0 && last.X == g.X && last.Y == g.Y && last.FontSize == g.FontSize {
			last.Text += g.Text
			return frags
		}
	}
	return append(frags, g)
}
