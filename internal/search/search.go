// Package search filters cached entries and resolves journal names.
package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/uefiscdi/internal/common"
	"github.com/joseph-ayodele/uefiscdi/internal/entity"
)

// Filter restricts a listing. Zero values disable each condition.
type Filter struct {
	// Category is a case-insensitive substring of the entry category.
	Category string
	// MaxQuartile keeps entries in quartile 1..MaxQuartile and entries without one.
	MaxQuartile int
	// Query is a case-insensitive regexp over MatchString; "" and "." match everything.
	Query string
}

func (f Filter) Validate() error {
	v := common.NewValidator()
	v.Field("quartile", f.MaxQuartile, common.Between(0, 4))
	return v.Error()
}

// Hit is an entry together with its position in the database.
type Hit struct {
	Position int
	Entry    entity.Entry
}

// Search returns the entries that pass f, in database order.
func Search(entries []entity.Entry, f Filter) ([]Hit, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var re *regexp.Regexp
	if q := strings.TrimSpace(f.Query); q != "" && q != "." {
		var err error
		if re, err = regexp.Compile("(?i)" + q); err != nil {
			return nil, fmt.Errorf("%w: query: %v", common.ErrInvalidInput, err)
		}
	}
	category := strings.ToLower(strings.TrimSpace(f.Category))

	var hits []Hit
	for i, e := range entries {
		if category != "" && (e.Category == nil || !strings.Contains(strings.ToLower(*e.Category), category)) {
			continue
		}
		if f.MaxQuartile > 0 && e.Quartile != nil && quartileRank(*e.Quartile) > f.MaxQuartile {
			continue
		}
		if re != nil && !re.MatchString(MatchString(e)) {
			continue
		}
		hits = append(hits, Hit{Position: i, Entry: e})
	}
	return hits, nil
}

// MatchString is the text a query is matched against, e.g.
// "[1234-5678] Journal Of Testing Category: Physics | Index: SCIE".
func MatchString(e entity.Entry) string {
	id := entity.Deref(e.ISSN)
	if id == "" {
		id = entity.Deref(e.EISSN)
	}
	return fmt.Sprintf("[%s] %s Category: %s | Index: %s",
		id, entity.Deref(e.Name), orUnknown(e.Category), orUnknown(e.Index))
}

func orUnknown(s *string) string {
	if s == nil {
		return "unknown"
	}
	return *s
}

func quartileRank(q string) int {
	if len(q) != 2 {
		return 0
	}
	n, err := strconv.Atoi(q[1:])
	if err != nil {
		return 0
	}
	return n
}
