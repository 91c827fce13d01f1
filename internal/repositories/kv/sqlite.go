package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/orgball2608/contentflow/internal/repositories"
	"github.com/orgball2608/contentflow/pkg/logger"
	_ "modernc.org/sqlite"
)

type SQLite struct {
	db     *sql.DB
	logger logger.Logger
}

func NewSQLite(db *sql.DB, logger logger.Logger) *SQLite {
	return &SQLite{
		db:     db,
		logger: logger.WithComponent("KVSQLiteRepo"),
	}
}

var _ Repository = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database file at path in WAL mode.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps writers from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	return db, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	query, args, err := repositories.SqliteBuilder.
		Select("value").
		From(Table).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", repositories.ErrBadQuery
	}

	var value string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	query, args, err := repositories.SqliteBuilder.
		Insert(Table).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	query, args, err := repositories.SqliteBuilder.
		Delete(Table).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *SQLite) Keys(ctx context.Context, prefix string) ([]string, error) {
	query, args, err := repositories.SqliteBuilder.
		Select("key").
		From(Table).
		Where(sq.Expr(`key LIKE ? ESCAPE '\'`, likePrefix(prefix))).
		OrderBy("key ASC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// LIKE is case-insensitive for ASCII in sqlite; keep exact prefix matches only.
	exact := keys[:0]
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			exact = append(exact, k)
		}
	}
	return exact, nil
}

func likePrefix(prefix string) string {
	r := strings.NewReplacer(`%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
