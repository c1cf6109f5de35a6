// Package extract turns a downloaded UEFISCDI document into a Database by
// dispatching on the (database, year) release.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/uefiscdi/constants"
	"github.com/joseph-ayodele/uefiscdi/internal/assemble"
	"github.com/joseph-ayodele/uefiscdi/internal/common"
	"github.com/joseph-ayodele/uefiscdi/internal/entity"
	"github.com/joseph-ayodele/uefiscdi/internal/pdftext"
	"github.com/joseph-ayodele/uefiscdi/internal/sheet"
)

// Extractor runs one extraction at a time; it holds no per-run state.
type Extractor struct {
	pdf    pdftext.Reader
	logger *slog.Logger
}

func NewExtractor(pdf pdftext.Reader, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{pdf: pdf, logger: logger}
}

// Extract validates the release before touching the file, then decodes every
// entry. Zone entries are sorted; score entries keep their source order.
func (x *Extractor) Extract(ctx context.Context, req Request) (*entity.Database, error) {
	spec, err := Lookup(req.Kind, req.Year)
	if err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, common.ConfigError(string(req.Kind), req.Year, fmt.Errorf("%w: empty path", common.ErrInvalidInput))
	}

	kind, year := string(req.Kind), req.Year
	logger := common.LoggerFrom(ctx, x.logger).With("database", kind, "version", year, "path", req.Path)
	start := time.Now()

	if _, err := os.Stat(req.Path); err != nil {
		return nil, common.TransportError(kind, year, req.Path, err)
	}
	if ext := constants.MapExtToFormat(filepath.Ext(req.Path)); ext != "" && ext != spec.Format {
		logger.Warn("extract.format.mismatch", "expected", spec.Format, "extension", ext)
	}

	var (
		entries []entity.Entry
		stats   assemble.Stats
	)
	switch spec.Format {
	case constants.PDF:
		pages, err := pdftext.ReadLines(ctx, x.pdf, req.Path)
		if err != nil {
			return nil, common.TransportError(kind, year, req.Path, err)
		}
		entries, stats = assemble.Pages(ctx, pages, spec.Grammar, spec.Header, logger)
		if stats.HeadersFound == 0 {
			logger.Warn("extract.header.missing", "header", spec.Header.Name, "pages", stats.Units)
		}

	case constants.XLSX:
		w, err := sheet.OpenWorkbook(req.Path)
		if err != nil {
			return nil, common.TransportError(kind, year, req.Path, err)
		}
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("extract.workbook.close_failed", "error", err)
			}
		}()

		if detected, ok := sheet.DetectLayout(w.Header()); ok && detected != spec.Layout {
			logger.Warn("extract.layout.mismatch", "configured", spec.Layout.String(), "detected", detected.String())
		}

		entries, stats, err = assemble.Rows(ctx, w, sheet.NewNormalizer(spec.Layout, logger), logger)
		if err != nil {
			return nil, common.ParseError(kind, year, req.Path, err)
		}

	default:
		return nil, common.ConfigError(kind, year, fmt.Errorf("%w: format %q", common.ErrUnsupported, spec.Format))
	}

	if len(entries) == 0 {
		return nil, common.ParseError(kind, year, req.Path, common.ErrNoEntries)
	}
	if req.Kind.IsQuartile() {
		assemble.SortZone(entries)
	}

	logger.Info("extract.done",
		"entries", len(entries),
		"stats", stats,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	url := req.URL
	if url == "" {
		url = req.Path
	}
	return &entity.Database{
		ID:      kind,
		Version: year,
		URL:     url,
		Entries: entries,
	}, nil
}
