package pdftext

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/uefiscdi/internal/common"
)

// ErrUnreadable is returned when a backend cannot open or decode a document.
var ErrUnreadable = errors.New("unreadable pdf")

// Reader yields the positioned fragments of every page, in page order.
type Reader interface {
	Pages(ctx context.Context, path string) ([][]Fragment, error)
}

// FallbackReader tries Primary and uses Secondary when it cannot read the file.
type FallbackReader struct {
	Primary   Reader
	Secondary Reader
	logger    *slog.Logger
}

func NewFallbackReader(primary, secondary Reader, logger *slog.Logger) *FallbackReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackReader{Primary: primary, Secondary: secondary, logger: logger}
}

func (f *FallbackReader) Pages(ctx context.Context, path string) ([][]Fragment, error) {
	pages, err := f.Primary.Pages(ctx, path)
	if err == nil {
		return pages, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	f.logger.Warn("pdftext.fallback", "path", path, "error", err)
	pages, err2 := f.Secondary.Pages(ctx, path)
	if err2 != nil {
		return nil, errors.Join(err, err2)
	}
	return pages, nil
}

// New builds the reader selected by cfg.Backend: native, poppler or auto (native
// with a poppler fallback).
func New(cfg common.PDFConfig, logger *slog.Logger) Reader {
	native := NewNativeReader(logger)
	switch cfg.Backend {
	case "native":
		return native
	case "poppler":
		return NewPopplerReader(cfg.Pdftotext, nil, logger)
	default:
		return NewFallbackReader(native, NewPopplerReader(cfg.Pdftotext, nil, logger), logger)
	}
}

// ReadLines reads path with r and reconstructs the raw lines of every page.
func ReadLines(ctx context.Context, r Reader, path string) ([][]string, error) {
	pages, err := r.Pages(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(pages))
	for i, frags := range pages {
		out[i] = Lines(frags)
	}
	return out, nil
}
