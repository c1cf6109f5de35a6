package entity

import (
	"fmt"
	"strings"
)

// Entry is one journal record from a UEFISCDI release, for data transfer between layers.
// Quartile-ranked entries carry Position and no Score; score-ranked entries the reverse.
type Entry struct {
	Category *string  `json:"category"`
	Index    *string  `json:"index"`
	Name     *string  `json:"name"`
	ISSN     *string  `json:"issn"`
	EISSN    *string  `json:"eissn"`
	Quartile *string  `json:"quartile"`
	Position *int     `json:"position"`
	Score    *float64 `json:"score"`
}

// Describe renders the entry for listings, e.g. "[AISQ Q2] Journal Name (Category)".
func (e Entry) Describe(database string) string {
	category := "unknown category"
	if e.Category != nil {
		category = *e.Category
	}

	value := "N/A"
	switch {
	case e.Score != nil:
		value = fmt.Sprintf("%g", *e.Score)
	case e.Quartile != nil:
		value = *e.Quartile
	}

	return fmt.Sprintf("[%s %s] %s (%s)", strings.ToUpper(database), value, Deref(e.Name), category)
}

// Deref returns the pointed-to string or "".
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Equal reports whether both entries carry the same values.
func (e Entry) Equal(o Entry) bool {
	return eqPtr(e.Category, o.Category) &&
		eqPtr(e.Index, o.Index) &&
		eqPtr(e.Name, o.Name) &&
		eqPtr(e.ISSN, o.ISSN) &&
		eqPtr(e.EISSN, o.EISSN) &&
		eqPtr(e.Quartile, o.Quartile) &&
		eqPtr(e.Position, o.Position) &&
		eqPtr(e.Score, o.Score)
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
