package grammar

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/uefiscdi/constants"
	"github.com/joseph-ayodele/uefiscdi/internal/entity"
	"github.com/joseph-ayodele/uefiscdi/internal/normalize"
)

// lookBack is how many prior lines may complete the head of a 2023 row.
const lookBack = 2

var issnToken = regexp.MustCompile(`(?i)^(\d{4}-\d{3}[\dX]|N/A)$`)

// Zone2023 decodes rows of the form
//
//	CATEGORY - INDEX JOURNAL ISSN EISSN QUARTILE POSITION
//
// The fixed tail is read from the right of the current line. When the head
// lacks the " - " separator the row was wrapped and up to two buffered lines
// are prepended.
type Zone2023 struct{}

func (Zone2023) Name() string { return "zone-2023" }

func (Zone2023) Trailer() int { return 0 }

func (Zone2023) Step(buf Buffer, line string) ([]entity.Entry, Buffer) {
	line = normalize.Clean(line)
	t, ok := splitTail(line)
	if !ok {
		return nil, push(buf, line, lookBack)
	}

	for k := 0; k <= len(buf); k++ {
		head := strings.TrimSpace(strings.Join(append(append([]string(nil), buf[len(buf)-k:]...), t.rest), " "))
		if e, ok := t.decode(head); ok {
			return []entity.Entry{e}, nil
		}
	}
	return nil, nil
}

type tail2023 struct {
	rest                             string
	issn, eissn, quartile, position string
}

func splitTail(line string) (tail2023, bool) {
	var t tail2023
	rest := line
	take := func() (string, bool) {
		i := strings.LastIndexByte(rest, ' ')
		if i < 0 {
			tok := rest
			rest = ""
			return tok, tok != ""
		}
		tok := rest[i+1:]
		rest = rest[:i]
		return tok, true
	}

	var ok bool
	if t.position, ok = take(); !ok || normalize.Position(t.position) == nil {
		return t, false
	}
	if t.quartile, ok = take(); !ok {
		return t, false
	}
	t.quartile = strings.ToUpper(t.quartile)
	if t.quartile != constants.QuartileNA && !constants.IsQuartile(t.quartile) {
		return t, false
	}
	if t.eissn, ok = take(); !ok || !issnToken.MatchString(t.eissn) {
		return t, false
	}
	if t.issn, ok = take(); !ok || !issnToken.MatchString(t.issn) {
		return t, false
	}
	t.rest = rest
	return t, true
}

// decode splits "CATEGORY - INDEX JOURNAL"; the index is the four characters
// after the separator.
func (t tail2023) decode(head string) (entity.Entry, bool) {
	category, rest, found := strings.Cut(head, " - ")
	if !found || len(rest) < 4 {
		return entity.Entry{}, false
	}
	index, ok := normalize.Index(rest[:4])
	if !ok {
		return entity.Entry{}, false
	}
	name := normalize.Text(rest[4:])
	if name == nil {
		return entity.Entry{}, false
	}

	return entity.Entry{
		Category: normalize.Text(category),
		Index:    index,
		Name:     name,
		ISSN:     normalize.ISSN(t.issn),
		EISSN:    normalize.ISSN(t.eissn),
		Quartile: normalize.Quartile(t.quartile),
		Position: normalize.Position(t.position),
	}, true
}
