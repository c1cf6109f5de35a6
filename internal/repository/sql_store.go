package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/uefiscdi/internal/common"
	"github.com/joseph-ayodele/uefiscdi/internal/entity"
)

const table = "ranking_databases"

const createTable = `CREATE TABLE IF NOT EXISTS ranking_databases (
	kind TEXT NOT NULL,
	version INTEGER NOT NULL,
	url TEXT NOT NULL,
	entries INTEGER NOT NULL,
	payload TEXT NOT NULL,
	extracted_at BIGINT NOT NULL,
	PRIMARY KEY (kind, version)
)`

// SQLStore keeps each database as a JSON payload row in SQLite or PostgreSQL.
type SQLStore struct {
	drv    *entsql.Driver
	pool   *pgxpool.Pool
	cfg    common.CacheConfig
	logger *slog.Logger
}

// OpenSQLStore connects and creates the cache table if needed.
func OpenSQLStore(ctx context.Context, cfg common.CacheConfig, logger *slog.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	drv, pool, err := Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &SQLStore{drv: drv, pool: pool, cfg: cfg, logger: logger}
	if err := drv.Exec(ctx, createTable, []any{}, nil); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: create table: %v", common.ErrDatabase, err)
	}
	return s, nil
}

func (s *SQLStore) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.drv.Dialect())
}

func (s *SQLStore) Load(ctx context.Context, id string, version int) (*entity.Database, error) {
	query, args := s.builder().
		Select("payload").
		From(s.builder().Table(table)).
		Where(entsql.And(entsql.EQ("kind", id), entsql.EQ("version", version))).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: load %s/%d: %v", common.ErrDatabase, id, version, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: load %s/%d: %v", common.ErrDatabase, id, version, err)
		}
		return nil, fmt.Errorf("%w: %s version %d", common.ErrNotFound, id, version)
	}
	var payload string
	if err := rows.Scan(&payload); err != nil {
		return nil, fmt.Errorf("%w: scan %s/%d: %v", common.ErrDatabase, id, version, err)
	}
	return Decode([]byte(payload))
}

func (s *SQLStore) Save(ctx context.Context, db *entity.Database) error {
	payload, err := Encode(db)
	if err != nil {
		return err
	}

	query, args := s.builder().
		Insert(table).
		Columns("kind", "version", "url", "entries", "payload", "extracted_at").
		Values(db.ID, db.Version, db.URL, len(db.Entries), string(payload), time.Now().Unix()).
		OnConflict(
			entsql.ConflictColumns("kind", "version"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		s.logger.Error("cache.save.failed", "database", db.ID, "version", db.Version, "error", err)
		return fmt.Errorf("%w: save %s/%d: %v", common.ErrDatabase, db.ID, db.Version, err)
	}
	s.logger.Debug("cache.saved", "database", db.ID, "version", db.Version, "entries", len(db.Entries))
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]Summary, error) {
	query, args := s.builder().
		Select("kind", "version", "url", "entries", "extracted_at").
		From(s.builder().Table(table)).
		OrderBy(entsql.Desc("version"), "kind").
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: list: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum Summary
			ts  int64
		)
		if err := rows.Scan(&sum.ID, &sum.Version, &sum.URL, &sum.Entries, &ts); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", common.ErrDatabase, err)
		}
		sum.ExtractedAt = time.Unix(ts, 0)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list: %v", common.ErrDatabase, err)
	}
	return out, nil
}

// Ping checks the connection within the configured dial timeout.
func (s *SQLStore) Ping(ctx context.Context) error {
	return HealthCheck(ctx, s.drv, s.cfg.DialTimeout, s.logger)
}

func (s *SQLStore) Close() error {
	Close(s.drv, s.pool, s.logger)
	return nil
}
