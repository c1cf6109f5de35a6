package sheet

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/uefiscdi/internal/entity"
	"github.com/joseph-ayodele/uefiscdi/internal/normalize"
)

// Outcome tells the caller what to do after a row was normalized.
type Outcome int

const (
	// Emit means the returned entry is valid.
	Emit Outcome = iota
	// Skip means the row did not decode; continue with the next one.
	Skip
	// Stop means the score cell is empty, which ends the table.
	Stop
)

func (o Outcome) String() string {
	switch o {
	case Emit:
		return "emit"
	case Skip:
		return "skip"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// Normalizer maps worksheet rows of one layout to entries.
type Normalizer struct {
	layout  Layout
	columns ColumnMap
	logger  *slog.Logger
}

func NewNormalizer(layout Layout, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{layout: layout, columns: layout.Columns(), logger: logger}
}

func (n *Normalizer) Layout() Layout { return n.layout }

// Normalize decodes one row. Rows may be shorter than the layout since
// trailing empty cells are not stored.
func (n *Normalizer) Normalize(row []string) (entity.Entry, Outcome) {
	c := n.columns
	score := cell(row, c.Score)
	if score == "" {
		return entity.Entry{}, Stop
	}

	name := normalize.Text(cell(row, c.Name))
	if name == nil {
		n.logger.Debug("sheet.row.skipped", "reason", "empty name", "row", row)
		return entity.Entry{}, Skip
	}

	e := entity.Entry{
		Name:  name,
		ISSN:  normalize.ISSN(cell(row, c.ISSN)),
		EISSN: normalize.ISSN(cell(row, c.EISSN)),
		Score: normalize.Score(score),
	}
	if e.Score == nil {
		n.logger.Debug("sheet.score.unparsable", "name", *name, "value", score)
	}

	if c.CategoryIndex >= 0 {
		category, index, ok := normalize.CategoryIndex(cell(row, c.CategoryIndex))
		if !ok {
			n.logger.Debug("sheet.row.skipped", "reason", "unknown index", "row", row)
			return entity.Entry{}, Skip
		}
		e.Category, e.Index = category, index
	}
	if c.Quartile >= 0 {
		e.Quartile = normalize.Quartile(cell(row, c.Quartile))
	}

	return e, Emit
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
