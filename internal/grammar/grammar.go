// Package grammar decodes journal rows from the raw text lines of the zone PDFs.
// Each release year has its own grammar; callers pick one explicitly.
package grammar

import (
	"github.com/joseph-ayodele/uefiscdi/internal/entity"
)

// Buffer holds physical lines of a row that has not been completed yet.
type Buffer []string

// RowGrammar reconstructs logical rows from a stream of physical lines.
// Step consumes one line and returns the rows it completed together with
// the buffer to pass to the next call. Implementations are stateless.
type RowGrammar interface {
	Name() string
	Step(buf Buffer, line string) ([]entity.Entry, Buffer)
	// Trailer is the number of lines at the end of each page that are never rows.
	Trailer() int
}

// QuartileColumn selects which quartile column a multi-quartile row reports.
type QuartileColumn int

const (
	JIFColumn QuartileColumn = iota
	AISColumn
)

// push appends line keeping at most max lines.
func push(buf Buffer, line string, max int) Buffer {
	buf = append(buf, line)
	if len(buf) > max {
		buf = append(Buffer(nil), buf[len(buf)-max:]...)
	}
	return buf
}
