package kv

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/contentflow/internal/repositories"
	"github.com/orgball2608/contentflow/pkg/logger"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("KVPgxRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Get(ctx context.Context, key string) (string, error) {
	query, args, err := repositories.SqBuilder.
		Select("value").
		From(Table).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", repositories.ErrBadQuery
	}

	var value string
	if err := p.pg.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (p *Pgx) Set(ctx context.Context, key, value string) error {
	query, args, err := repositories.SqBuilder.
		Insert(Table).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}

func (p *Pgx) Delete(ctx context.Context, key string) error {
	query, args, err := repositories.SqBuilder.
		Delete(Table).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}

func (p *Pgx) Keys(ctx context.Context, prefix string) ([]string, error) {
	query, args, err := repositories.SqBuilder.
		Select("key").
		From(Table).
		Where(sq.Expr(`key LIKE ? ESCAPE '\'`, likePrefix(prefix))).
		OrderBy("key ASC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
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

	return keys, nil
}
