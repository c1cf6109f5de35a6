package async

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joseph-ayodele/uefiscdi/constants"
)

// ErrClosed is returned by Enqueue after Shutdown.
var ErrClosed = errors.New("queue is shutting down")

// Job asks for one database release to be (re)indexed.
type Job struct {
	Kind        constants.Database
	Year        int
	Overwrite   bool
	SubmittedAt time.Time
	TraceID     string
}

func (j Job) key() string { return fmt.Sprintf("%s/%d", j.Kind, j.Year) }

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
