package kv

import (
	"context"
	"fmt"

	"github.com/orgball2608/contentflow/internal/migrations"
	"github.com/orgball2608/contentflow/pkg/config"
	"github.com/orgball2608/contentflow/pkg/logger"
	"github.com/orgball2608/contentflow/pkg/pgx"
)

// Open connects the substrate selected by STORAGE_DRIVER and brings its
// schema up to date. The returned func releases the underlying connection.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (Repository, func() error, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		log.Warn("Using in-memory storage, content is lost on exit")
		return NewMemory(), func() error { return nil }, nil

	case config.StorageSQLite, "":
		db, err := OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Up(db, migrations.DialectSQLite); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info("Opened sqlite storage", "path", cfg.Storage.SQLitePath)
		return NewSQLite(db, log), db.Close, nil

	case config.StoragePostgres:
		if err := migrations.UpPostgres(cfg.GetDSN()); err != nil {
			return nil, nil, err
		}
		pool, err := pgx.Connect(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return NewPgx(pool, log), func() error {
			pool.Close()
			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
