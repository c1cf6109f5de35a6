// Package repository persists extracted databases, keyed by (id, version).
package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/uefiscdi/internal/common"
	"github.com/joseph-ayodele/uefiscdi/internal/entity"
)

// Summary describes one cached database without its entries.
type Summary struct {
	ID          string
	Version     int
	URL         string
	Entries     int
	ExtractedAt time.Time
}

// Store is the extraction cache. Load returns an error wrapping
// common.ErrNotFound when nothing is cached for the key.
type Store interface {
	Load(ctx context.Context, id string, version int) (*entity.Database, error)
	Save(ctx context.Context, db *entity.Database) error
	List(ctx context.Context) ([]Summary, error)
	Close() error
}

// NewStore opens the backend selected by cfg.Backend.
func NewStore(ctx context.Context, cfg common.CacheConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Backend == common.BackendJSON || cfg.Backend == "" {
		return NewJSONStore(cfg.Dir, logger), nil
	}
	return OpenSQLStore(ctx, cfg, logger)
}
