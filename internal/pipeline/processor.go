// Package pipeline runs the index flow: cache lookup, download, decryption,
// extraction and persistence of one database release.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/joseph-ayodele/uefiscdi/constants"
	"github.com/joseph-ayodele/uefiscdi/internal/common"
	"github.com/joseph-ayodele/uefiscdi/internal/download"
	"github.com/joseph-ayodele/uefiscdi/internal/entity"
	"github.com/joseph-ayodele/uefiscdi/internal/extract"
	"github.com/joseph-ayodele/uefiscdi/internal/repository"
	"github.com/joseph-ayodele/uefiscdi/internal/sheet"
)

// Extractor is satisfied by *extract.Extractor.
type Extractor interface {
	Extract(ctx context.Context, req extract.Request) (*entity.Database, error)
}

// Options tune a single Index call.
type Options struct {
	// Overwrite re-extracts even when a snapshot is cached.
	Overwrite bool
	// Password overrides the configured spreadsheet password.
	Password string
	// URL overrides the configured source. Plain paths and file:// URLs are
	// read in place.
	URL string
}

// Processor coordinates fetch, decrypt, extract and store.
type Processor struct {
	cfg       *common.Config
	fetcher   download.Fetcher
	extractor Extractor
	store     repository.Store
	logger    *slog.Logger
}

func NewProcessor(cfg *common.Config, fetcher download.Fetcher, extractor Extractor, store repository.Store, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{cfg: cfg, fetcher: fetcher, extractor: extractor, store: store, logger: logger}
}

// Index returns the snapshot for (kind, year), extracting and caching it when
// it is missing or opts.Overwrite is set. Configuration problems are reported
// before any network or file access. Temporary files are removed on every path.
func (p *Processor) Index(ctx context.Context, kind constants.Database, year int, opts Options) (*entity.Database, error) {
	ctx, runID := common.WithRunID(ctx)
	logger := p.logger.With("run_id", runID, "database", string(kind), "version", year)
	start := time.Now()

	spec, err := extract.Lookup(kind, year)
	if err != nil {
		logger.Error("processor.lookup.failed", "error", err)
		return nil, err
	}

	source := opts.URL
	if source == "" {
		if source, err = p.cfg.URL(string(kind), year); err != nil {
			logger.Error("processor.url.missing", "error", err)
			return nil, err
		}
	}

	if !opts.Overwrite {
		db, err := p.store.Load(ctx, string(kind), year)
		switch {
		case err == nil:
			logger.Info("processor.cache.hit", "entries", len(db.Entries))
			return db, nil
		case errors.Is(err, common.ErrNotFound):
			logger.Debug("processor.cache.miss")
		default:
			logger.Warn("processor.cache.unreadable", "error", err)
		}
	}

	// 1) fetch → local path
	local, cleanup, err := p.fetch(ctx, source)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		logger.Error("processor.fetch.failed", "url", source, "error", err)
		return nil, common.TransportError(string(kind), year, source, err)
	}
	logger.Info("processor.fetch.ok", "url", source, "path", local)

	// 2) decrypt protected spreadsheets into a plain temporary copy
	if spec.Format == constants.XLSX {
		password := opts.Password
		if password == "" {
			password = p.cfg.Password
		}
		plain, release, err := sheet.Decrypt(local, password, logger)
		defer release()
		if err != nil {
			logger.Error("processor.decrypt.failed", "path", local, "error", err)
			return nil, common.TransportError(string(kind), year, source, err)
		}
		local = plain
	}

	// 3) extract
	db, err := p.extractor.Extract(ctx, extract.Request{Kind: kind, Year: year, Path: local, URL: source})
	if err != nil {
		logger.Error("processor.extract.failed", "error", err)
		return nil, err
	}
	logger.Info("processor.extract.ok", "entries", len(db.Entries))

	// 4) persist
	if err := p.store.Save(ctx, db); err != nil {
		logger.Error("processor.store.failed", "error", err)
		return nil, fmt.Errorf("cache %s version %d: %w", kind, year, err)
	}
	logger.Info("processor.done", "entries", len(db.Entries), "elapsed_ms", time.Since(start).Milliseconds())
	return db, nil
}

// Result is the outcome of one database in IndexAll.
type Result struct {
	Kind     constants.Database
	Database *entity.Database
	Err      error
}

// IndexAll indexes every database supported for year in turn. A failure does
// not stop the remaining databases; the joined error lists each one.
func (p *Processor) IndexAll(ctx context.Context, year int, opts Options) ([]Result, error) {
	if opts.URL != "" {
		return nil, fmt.Errorf("%w: a single URL cannot serve every database", common.ErrInvalidInput)
	}
	kinds := extract.Kinds(year)
	if len(kinds) == 0 {
		return nil, common.ConfigError("*", year, common.ErrUnsupported)
	}

	var (
		results []Result
		errs    []error
	)
	for _, kind := range kinds {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		db, err := p.Index(ctx, kind, year, opts)
		results = append(results, Result{Kind: kind, Database: db, Err: err})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
		}
	}
	return results, errors.Join(errs...)
}

// fetch downloads remote sources; local paths are used as they are.
func (p *Processor) fetch(ctx context.Context, source string) (string, func(), error) {
	u, err := url.Parse(source)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return p.fetcher.Fetch(ctx, source)
	}
	if err == nil && u.Scheme == "file" {
		return u.Path, func() {}, nil
	}
	return source, func() {}, nil
}
