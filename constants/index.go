package constants

// CitationIndex is a Web of Science Core Collection edition code.
type CitationIndex string

const (
	AHCI CitationIndex = "AHCI"
	ESCI CitationIndex = "ESCI"
	SCIE CitationIndex = "SCIE"
	SSCI CitationIndex = "SSCI"
)

var indexNames = map[CitationIndex]string{
	AHCI: "Arts Humanities Citation Index",
	ESCI: "Emerging Sources Citation Index",
	SCIE: "Science Citation Index Expanded",
	SSCI: "Social Sciences Citation Index",
}

// LookupIndex returns the citation index for an already uppercased code.
func LookupIndex(code string) (CitationIndex, bool) {
	idx := CitationIndex(code)
	_, ok := indexNames[idx]
	return idx, ok
}

func (c CitationIndex) Name() string { return indexNames[c] }

// Quartile tokens as they appear in the source documents.
const (
	QuartileNA = "N/A"
	// QuartileUnknown sorts entries without a quartile after Q1..Q4.
	QuartileUnknown = "Q9"
)

var quartiles = map[string]struct{}{"Q1": {}, "Q2": {}, "Q3": {}, "Q4": {}}

func IsQuartile(s string) bool {
	_, ok := quartiles[s]
	return ok
}
