// Package assemble drives row decoders over a whole document and collects the
// resulting entries.
package assemble

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/joseph-ayodele/uefiscdi/constants"
	"github.com/joseph-ayodele/uefiscdi/internal/common"
	"github.com/joseph-ayodele/uefiscdi/internal/entity"
	"github.com/joseph-ayodele/uefiscdi/internal/grammar"
	"github.com/joseph-ayodele/uefiscdi/internal/sheet"
)

// Stats summarises one assembly run.
type Stats struct {
	Units        int // pages or worksheet rows read
	Lines        int // content lines fed to the grammar
	Rows         int // entries kept
	Dropped      int // buffered lines discarded at page ends
	Duplicates   int // entries identical to the one before them
	HeadersFound int
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("units", s.Units),
		slog.Int("lines", s.Lines),
		slog.Int("rows", s.Rows),
		slog.Int("dropped", s.Dropped),
		slog.Int("duplicates", s.Duplicates),
		slog.Int("headers_found", s.HeadersFound),
	)
}

// Pages runs g over the lines of every page. Content starts after the header
// located by h (or at the top of the page when none is found) and stops before
// the grammar's trailer. Each page starts with an empty buffer; whatever is
// still buffered at the end of a page is dropped.
func Pages(ctx context.Context, pages [][]string, g grammar.RowGrammar, h *grammar.Header, logger *slog.Logger) ([]entity.Entry, Stats) {
	logger = common.LoggerFrom(ctx, logger)

	var (
		out   []entity.Entry
		stats Stats
	)
	for i, lines := range pages {
		stats.Units++

		offset, found := h.Locate(lines)
		if found {
			stats.HeadersFound++
		}
		end := len(lines) - g.Trailer()
		if end < offset {
			end = offset
		}

		var (
			buf    grammar.Buffer
			rows   []entity.Entry
			before = len(out)
		)
		for _, line := range lines[offset:end] {
			stats.Lines++
			rows, buf = g.Step(buf, line)
			for _, e := range rows {
				if len(out) > 0 && out[len(out)-1].Equal(e) {
					stats.Duplicates++
					continue
				}
				out = append(out, e)
			}
		}
		stats.Dropped += len(buf)

		logger.Debug("assemble.page",
			"page", i+1,
			"pages", len(pages),
			"grammar", g.Name(),
			"header_found", found,
			"offset", offset,
			"rows", len(out)-before,
			"total", len(out),
		)
	}

	stats.Rows = len(out)
	return out, stats
}

// Rows reads worksheet rows until the normalizer signals the end of data.
func Rows(ctx context.Context, cur sheet.Cursor, n *sheet.Normalizer, logger *slog.Logger) ([]entity.Entry, Stats, error) {
	logger = common.LoggerFrom(ctx, logger)

	var (
		out   []entity.Entry
		stats Stats
	)
	for cur.Next() {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		stats.Units++

		row, err := cur.Row()
		if err != nil {
			return nil, stats, fmt.Errorf("read row %d: %w", stats.Units+1, err)
		}

		e, outcome := n.Normalize(row)
		if outcome == sheet.Stop {
			logger.Debug("assemble.rows.end", "row", stats.Units+1)
			break
		}
		if outcome == sheet.Skip {
			stats.Dropped++
			continue
		}
		out = append(out, e)
	}

	stats.Rows = len(out)
	return out, stats, nil
}

// SortZone orders quartile entries by (index, category, quartile, position).
// Entries without a quartile sort after Q4.
func SortZone(entries []entity.Entry) {
	slices.SortStableFunc(entries, CompareZone)
}

func CompareZone(a, b entity.Entry) int {
	return cmp.Or(
		cmp.Compare(entity.Deref(a.Index), entity.Deref(b.Index)),
		cmp.Compare(entity.Deref(a.Category), entity.Deref(b.Category)),
		cmp.Compare(quartileKey(a), quartileKey(b)),
		cmp.Compare(positionKey(a), positionKey(b)),
	)
}

func quartileKey(e entity.Entry) string {
	if e.Quartile == nil {
		return constants.QuartileUnknown
	}
	return *e.Quartile
}

func positionKey(e entity.Entry) int {
	if e.Position == nil {
		return grammar.UnrankedPosition
	}
	return *e.Position
}
