package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/uefiscdi/constants"
	"github.com/joseph-ayodele/uefiscdi/internal/entity"
	"github.com/joseph-ayodele/uefiscdi/internal/pipeline"
)

// Indexer is satisfied by *pipeline.Processor.
type Indexer interface {
	Index(ctx context.Context, kind constants.Database, year int, opts pipeline.Options) (*entity.Database, error)
}

// IndexQueue runs index jobs on a fixed set of workers. A release that is
// already waiting is not queued twice; an overwrite request upgrades it.
type IndexQueue struct {
	indexer Indexer
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch      chan Job
	done    chan struct{}
	wg      sync.WaitGroup
	senders sync.WaitGroup
	once    sync.Once

	mu     sync.Mutex
	closed bool
	// pending maps a waiting release to whether any request for it asked to overwrite.
	pending map[string]bool
}

type Option func(*IndexQueue)

func WithWorkers(n int) Option {
	return func(q *IndexQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *IndexQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *IndexQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewIndexQueue(indexer Indexer, logger *slog.Logger, opts ...Option) *IndexQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &IndexQueue{
		indexer: indexer,
		logger:  logger,
		workers: 2,
		timeout: 10 * time.Minute,
		ch:      make(chan Job, 32),
		done:    make(chan struct{}),
		pending: make(map[string]bool),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *IndexQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)

				for job := range q.ch {
					q.run(workerID, job)
				}

				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *IndexQueue) run(workerID int, job Job) {
	job.Overwrite = q.claim(job)

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	db, err := q.indexer.Index(ctx, job.Kind, job.Year, pipeline.Options{Overwrite: job.Overwrite})
	if err != nil {
		q.logger.Error("queue.index.failed", "worker_id", workerID, "database", job.Kind, "version", job.Year, "trace_id", job.TraceID, "error", err)
		return
	}
	q.logger.Info("queue.index.ok", "worker_id", workerID, "database", job.Kind, "version", job.Year,
		"trace_id", job.TraceID, "entries", len(db.Entries), "waited_ms", time.Since(job.SubmittedAt).Milliseconds())
}

// Enqueue blocks while the queue is full, until ctx is done or the queue shuts down.
func (q *IndexQueue) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("queue.enqueue.closed", "database", job.Kind, "version", job.Year)
		return ErrClosed
	}
	key := job.key()
	if overwrite, ok := q.pending[key]; ok {
		q.pending[key] = overwrite || job.Overwrite
		q.mu.Unlock()
		q.logger.Info("queue.enqueue.duplicate", "database", job.Kind, "version", job.Year, "overwrite", job.Overwrite)
		return nil
	}
	q.pending[key] = job.Overwrite
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	select {
	case q.ch <- job:
		q.logger.Info("queue.enqueue.ok", "database", job.Kind, "version", job.Year, "overwrite", job.Overwrite)
		return nil
	default:
	}

	q.logger.Warn("queue.enqueue.full", "database", job.Kind, "version", job.Year)
	select {
	case q.ch <- job:
		return nil
	case <-q.done:
		q.unmark(key)
		return ErrClosed
	case <-ctx.Done():
		q.unmark(key)
		return ctx.Err()
	}
}

// claim removes job from the pending set and reports whether it must overwrite.
func (q *IndexQueue) claim(job Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	key := job.key()
	overwrite := q.pending[key]
	delete(q.pending, key)
	return overwrite || job.Overwrite
}

func (q *IndexQueue) unmark(key string) {
	q.mu.Lock()
	delete(q.pending, key)
	q.mu.Unlock()
}

// Shutdown stops accepting jobs and waits for queued ones until ctx is done.
// Senders still blocked on a full queue get ErrClosed.
func (q *IndexQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	close(q.done)
	// no sender can register once closed is set, and the registered ones
	// return as soon as done is closed
	q.senders.Wait()
	close(q.ch)

	finished := make(chan struct{})
	go func() { defer close(finished); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-finished:
		q.logger.Info("queue.shutdown.ok")
	}
}
