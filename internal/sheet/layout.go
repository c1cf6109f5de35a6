// Package sheet normalizes rows of the UEFISCDI score spreadsheets.
package sheet

import (
	"strings"
)

// Layout names a fixed column arrangement. It always comes from the
// (database, year) dispatch table, never from the length of a row.
type Layout int

const (
	// ScoreRow4 is name, ISSN, eISSN, score (RIS and RIF exports).
	ScoreRow4 Layout = iota + 1
	// ScoreRow6 is name, ISSN, eISSN, "category - index", score, quartile (AIS export).
	ScoreRow6
)

// ColumnMap holds zero-based column positions; -1 marks a column the layout lacks.
type ColumnMap struct {
	Name          int
	ISSN          int
	EISSN         int
	CategoryIndex int
	Score         int
	Quartile      int
}

var columnMaps = map[Layout]ColumnMap{
	ScoreRow4: {Name: 0, ISSN: 1, EISSN: 2, CategoryIndex: -1, Score: 3, Quartile: -1},
	ScoreRow6: {Name: 0, ISSN: 1, EISSN: 2, CategoryIndex: 3, Score: 4, Quartile: 5},
}

func (l Layout) Columns() ColumnMap { return columnMaps[l] }

func (l Layout) Valid() bool {
	_, ok := columnMaps[l]
	return ok
}

func (l Layout) String() string {
	switch l {
	case ScoreRow4:
		return "score-row-4"
	case ScoreRow6:
		return "score-row-6"
	default:
		return "unknown"
	}
}

// DetectLayout guesses the layout from a header row. It is only used to warn
// about a mismatch with the configured layout.
func DetectLayout(header []string) (Layout, bool) {
	var cells []string
	for _, h := range header {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			cells = append(cells, h)
		}
	}

	hasCategory := false
	for _, c := range cells {
		if strings.Contains(c, "categ") || strings.Contains(c, "domeniu") {
			hasCategory = true
			break
		}
	}

	switch {
	case len(cells) >= 6 && hasCategory:
		return ScoreRow6, true
	case len(cells) == 4:
		return ScoreRow4, true
	default:
		return 0, false
	}
}
