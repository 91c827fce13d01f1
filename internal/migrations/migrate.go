package migrations

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// Goose dialects for the supported substrates.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// Up applies every registered migration to db.
func Up(db *sql.DB, dialect string) error {
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// UpPostgres opens a short-lived lib/pq connection and migrates it.
func UpPostgres(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	return Up(db, DialectPostgres)
}
