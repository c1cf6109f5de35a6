package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/uefiscdi/internal/common"
)

// Open connects to the configured SQL backend and wraps it in an ent driver.
// The pool is only set for PostgreSQL.
func Open(ctx context.Context, cfg common.CacheConfig, logger *slog.Logger) (*entsql.Driver, *pgxpool.Pool, error) {
	switch cfg.Backend {
	case common.BackendSQLite:
		logger.Info("opening sqlite cache", "dsn", cfg.DSN)
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			logger.Error("failed to open sqlite cache", "error", err)
			return nil, nil, err
		}
		// one writer at a time
		db.SetMaxOpenConns(1)
		return entsql.OpenDB(dialect.SQLite, db), nil, nil

	case common.BackendPostgres:
		logger.Info("connecting to database", "backend", cfg.Backend)
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, nil, err
		}

		pc.MaxConns = cfg.MaxConns
		pc.MinConns = cfg.MinConns
		pc.MaxConnLifetime = cfg.MaxConnLifetime
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
		pc.ConnConfig.RuntimeParams["application_name"] = "uefiscdi"

		dialCtx := ctx
		if cfg.DialTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
		}
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, nil, err
		}

		// Wrap pool as *sql.DB for the ent driver
		db := stdlib.OpenDBFromPool(pool)
		logger.Info("successfully connected to database")
		return entsql.OpenDB(dialect.Postgres, db), pool, nil

	default:
		return nil, nil, fmt.Errorf("%w: cache backend %q is not a SQL backend", common.ErrInvalidInput, cfg.Backend)
	}
}

// Close closes the database connections gracefully
func Close(drv *entsql.Driver, pool *pgxpool.Pool, logger *slog.Logger) {
	logger.Debug("closing database connections")
	if drv != nil {
		if err := drv.Close(); err != nil {
			logger.Error("failed to close driver", "error", err)
		}
	}
	if pool != nil {
		pool.Close()
	}
}

// HealthCheck pings using database/sql to catch DSN issues early.
func HealthCheck(ctx context.Context, drv *entsql.Driver, timeout time.Duration, logger *slog.Logger) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	logger.Debug("pinging database", "dialect", drv.Dialect())
	if err := drv.DB().PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %v", common.ErrDatabase, err)
	}
	logger.Debug("database ping successful")
	return nil
}
