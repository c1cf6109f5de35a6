package grammar

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/uefiscdi/internal/entity"
	"github.com/joseph-ayodele/uefiscdi/internal/normalize"
)

// maxRowLines bounds how many physical lines one 2024 row may span.
const maxRowLines = 3

// UnrankedPosition marks 2024 zone entries, which carry no position in quartile.
const UnrankedPosition = -1

var row2024 = regexp.MustCompile(
	`([()\p{L}\p{N}_ &\-.,:'’/+]+?)\s?` + // journal name
		`(\d{4}-\d{3}[\dxX]|N/A) (\d{4}-\d{3}[\dxX]|N/A)\s?` + // issn | eissn
		`([\p{L}\p{N}_ &,\-]+?)\s?(AHCI|ESCI|SCIE|SSCI) ` + // category | edition
		`(Q[1234]|N/A) (Q[1234]|N/A)`, // JIF | AIS quartile
)

// Zone2024 decodes rows of the form
//
//	JOURNAL ISSN EISSN CATEGORY EDITION JIF_QUARTILE AIS_QUARTILE
//
// which the renderer may spread over up to three lines. Each page ends with a
// footer line.
type Zone2024 struct {
	Column QuartileColumn
}

func (z Zone2024) Name() string {
	if z.Column == AISColumn {
		return "zone-2024-ais"
	}
	return "zone-2024-jif"
}

func (Zone2024) Trailer() int { return 1 }

func (z Zone2024) Step(buf Buffer, line string) ([]entity.Entry, Buffer) {
	buf = push(buf, normalize.Clean(line), maxRowLines)

	matches := row2024.FindAllStringSubmatch(strings.Join(buf, " "), -1)
	if len(matches) == 0 {
		return nil, buf
	}

	entries := make([]entity.Entry, 0, len(matches))
	for _, m := range matches {
		index, ok := normalize.Index(m[5])
		if !ok {
			continue
		}
		name := normalize.Text(m[1])
		if name == nil {
			continue
		}
		entries = append(entries, entity.Entry{
			Category: normalize.Text(m[4]),
			Index:    index,
			Name:     name,
			ISSN:     normalize.ISSN(m[2]),
			EISSN:    normalize.ISSN(m[3]),
			Quartile: normalize.Quartile(m[6+int(z.Column)]),
			Position: entity.Ptr(UnrankedPosition),
		})
	}
	return entries, nil
}
