package search

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/uefiscdi/internal/common"
	"github.com/joseph-ayodele/uefiscdi/internal/entity"
	"github.com/joseph-ayodele/uefiscdi/internal/normalize"
)

// Policy decides what Resolve does when a name matches several journals.
type Policy int

const (
	// FirstMatch returns the first candidate in database order. This is a
	// known imprecision: similarly named journals are not told apart.
	FirstMatch Policy = iota
	// RequireUnique fails with common.ErrAmbiguous when candidates differ.
	RequireUnique
)

func (p Policy) String() string {
	if p == RequireUnique {
		return "unique"
	}
	return "first"
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return FirstMatch, nil
	case "unique":
		return RequireUnique, nil
	default:
		return FirstMatch, fmt.Errorf("%w: policy %q (want first or unique)", common.ErrInvalidInput, s)
	}
}

// Resolve finds the entry for a journal given by name or ISSN. Exact
// (case-insensitive) matches win over substring matches. Entries of the same
// journal in several categories count as one candidate.
func Resolve(entries []entity.Entry, query string, policy Policy) (entity.Entry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return entity.Entry{}, fmt.Errorf("%w: empty journal name", common.ErrInvalidInput)
	}

	candidates := exact(entries, query)
	if len(candidates) == 0 {
		candidates = partial(entries, query)
	}
	if len(candidates) == 0 {
		return entity.Entry{}, fmt.Errorf("%w: journal %q", common.ErrNotFound, query)
	}

	if policy == RequireUnique {
		if names := distinct(candidates); len(names) > 1 {
			return entity.Entry{}, fmt.Errorf("%w: %q matches %s", common.ErrAmbiguous, query, strings.Join(names, "; "))
		}
	}
	return candidates[0], nil
}

func exact(entries []entity.Entry, query string) []entity.Entry {
	var out []entity.Entry
	if issn := normalize.ISSN(query); issn != nil {
		for _, e := range entries {
			if entity.Deref(e.ISSN) == *issn || entity.Deref(e.EISSN) == *issn {
				out = append(out, e)
			}
		}
		return out
	}

	title := normalize.Title(query)
	for _, e := range entries {
		if strings.EqualFold(entity.Deref(e.Name), title) {
			out = append(out, e)
		}
	}
	return out
}

func partial(entries []entity.Entry, query string) []entity.Entry {
	needle := strings.ToLower(normalize.Clean(query))
	var out []entity.Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(entity.Deref(e.Name)), needle) {
			out = append(out, e)
		}
	}
	return out
}

// distinct lists the different journals among entries, keyed by name and ISSNs.
func distinct(entries []entity.Entry) []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		key := strings.ToLower(entity.Deref(e.Name)) + "|" + entity.Deref(e.ISSN) + "|" + entity.Deref(e.EISSN)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, entity.Deref(e.Name))
	}
	return names
}
