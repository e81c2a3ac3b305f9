package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB over either a kiosk-local SQLite file (the default)
// or Postgres when DATABASE_URL is a postgres URL.
type DB struct {
	Client *sql.DB
	Driver string
}

// Open connects to the store selected by databaseURL and applies the
// schema migration.
func Open(databaseURL string) (*DB, error) {
	var (
		db     *sql.DB
		driver string
		err    error
	)
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		driver = "pgx"
		db, err = sql.Open("pgx", databaseURL)
		if err == nil {
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(time.Hour)
		}
	} else {
		driver = "sqlite3"
		if dir := filepath.Dir(databaseURL); dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		db, err = sql.Open("sqlite3", databaseURL+"?_journal_mode=WAL&_busy_timeout=5000")
	}
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{Client: db, Driver: driver}, nil
}

// migrate creates the check-in log and roster tables. The statements
// stick to the portable subset both drivers accept.
func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS checkin (
		id         TEXT PRIMARY KEY,
		timestamp  TEXT NOT NULL,
		id_number  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_checkin_timestamp ON checkin(timestamp);
	CREATE INDEX IF NOT EXISTS idx_checkin_id_number ON checkin(id_number);

	CREATE TABLE IF NOT EXISTS student (
		id_number   TEXT PRIMARY KEY,
		first_name  TEXT NOT NULL DEFAULT '',
		last_name   TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS kiosk (
		kiosk_id    TEXT PRIMARY KEY,
		created_at  TEXT NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
