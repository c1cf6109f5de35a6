package extract

import (
	"slices"

	"github.com/joseph-ayodele/uefiscdi/constants"
	"github.com/joseph-ayodele/uefiscdi/internal/common"
	"github.com/joseph-ayodele/uefiscdi/internal/grammar"
	"github.com/joseph-ayodele/uefiscdi/internal/sheet"
)

// Request names one downloaded source document.
type Request struct {
	Kind constants.Database
	Year int
	Path string
	// URL is recorded in the result; Path is used when empty.
	URL string
}

// Spec describes how one release of a database is laid out. PDF releases set
// Grammar and Header, spreadsheet releases set Layout.
type Spec struct {
	Format  string
	Grammar grammar.RowGrammar
	Header  *grammar.Header
	Layout  sheet.Layout
}

type release struct {
	kind constants.Database
	year int
}

var table = map[release]Spec{
	{constants.JIFQuartile, 2023}: {Format: constants.PDF, Grammar: grammar.Zone2023{}, Header: &grammar.Header2023},
	{constants.AISQuartile, 2023}: {Format: constants.PDF, Grammar: grammar.Zone2023{}, Header: &grammar.Header2023},
	{constants.AISScore, 2023}:    {Format: constants.XLSX, Layout: sheet.ScoreRow6},
	{constants.RISScore, 2023}:    {Format: constants.XLSX, Layout: sheet.ScoreRow4},
	{constants.RIFScore, 2023}:    {Format: constants.XLSX, Layout: sheet.ScoreRow4},

	{constants.JIFQuartile, 2024}: {Format: constants.PDF, Grammar: grammar.Zone2024{Column: grammar.JIFColumn}, Header: &grammar.Header2024},
	{constants.AISQuartile, 2024}: {Format: constants.PDF, Grammar: grammar.Zone2024{Column: grammar.AISColumn}, Header: &grammar.Header2024},
	// 2024 score spreadsheets have no known column layout yet.
}

// Lookup returns the layout of a release, or a configuration error wrapping
// ErrUnsupported.
func Lookup(kind constants.Database, year int) (Spec, error) {
	if !kind.Valid() {
		return Spec{}, common.ConfigError(string(kind), year, common.ErrUnsupported)
	}
	spec, ok := table[release{kind, year}]
	if !ok {
		return Spec{}, common.ConfigError(string(kind), year, common.ErrUnsupported)
	}
	return spec, nil
}

// Release is one supported (database, year) pair.
type Release struct {
	Kind   constants.Database
	Year   int
	Format string
}

// Supported lists every release the extractor understands, newest first.
func Supported() []Release {
	out := make([]Release, 0, len(table))
	for r, spec := range table {
		out = append(out, Release{Kind: r.kind, Year: r.year, Format: spec.Format})
	}
	order := constants.AllDatabases()
	slices.SortFunc(out, func(a, b Release) int {
		if a.Year != b.Year {
			return b.Year - a.Year
		}
		return slices.Index(order, a.Kind) - slices.Index(order, b.Kind)
	})
	return out
}

// Years lists the supported release years, newest first.
func Years() []int {
	var years []int
	for _, r := range Supported() {
		if !slices.Contains(years, r.Year) {
			years = append(years, r.Year)
		}
	}
	return years
}

// Kinds lists the databases supported for year, in display order.
func Kinds(year int) []constants.Database {
	var kinds []constants.Database
	for _, kind := range constants.AllDatabases() {
		if _, ok := table[release{kind, year}]; ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
