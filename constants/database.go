package constants

import (
	"strings"
)

// Database identifies one of the UEFISCDI ranking databases.
type Database string

const (
	AISQuartile Database = "aisq"
	JIFQuartile Database = "jifq"
	AISScore    Database = "ais"
	RISScore    Database = "ris"
	RIFScore    Database = "rif"
)

var allDatabases = []Database{
	AISQuartile,
	JIFQuartile,
	AISScore,
	RISScore,
	RIFScore,
}

var descriptions = map[Database]string{
	AISQuartile: "Article Influence Score (Quartiles)",
	JIFQuartile: "Journal Impact Factor (Quartiles)",
	AISScore:    "Article Influence Score (Scores)",
	RISScore:    "Relative Influence Score (Scores)",
	RIFScore:    "Relative Impact Factor (Scores)",
}

var keys = map[Database]string{
	AISQuartile: "uefiscdi_ais_quartile",
	JIFQuartile: "uefiscdi_jif_quartile",
	AISScore:    "uefiscdi_ais_score",
	RISScore:    "uefiscdi_ris_score",
	RIFScore:    "uefiscdi_rif_score",
}

// AllDatabases returns the known databases in display order.
func AllDatabases() []Database {
	out := make([]Database, len(allDatabases))
	copy(out, allDatabases)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allDatabases))
	for i, db := range allDatabases {
		result[i] = string(db)
	}
	return result
}

// Description is the human readable name of the database.
func (d Database) Description() string { return descriptions[d] }

// Key is the unique document key used when the database is attached to documents.
func (d Database) Key() string { return keys[d] }

// IsQuartile reports whether entries of d are ranked by quartile and position.
func (d Database) IsQuartile() bool {
	return d == AISQuartile || d == JIFQuartile
}

func (d Database) Valid() bool {
	_, ok := descriptions[d]
	return ok
}

func Canonicalize(input string) (Database, bool) {
	if input == "" {
		return "", false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Database{
		"jif":          JIFQuartile,
		"jif-quartile": JIFQuartile,
		"if":           JIFQuartile,
		"ais-quartile": AISQuartile,
		"ais-score":    AISScore,
		"sri":          RISScore,
		"fir":          RIFScore,
	}

	if db, ok := synonyms[normalized]; ok {
		return db, true
	}

	for _, db := range allDatabases {
		if normalized == string(db) {
			return db, true
		}
	}

	return "", false
}
