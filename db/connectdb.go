package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
  id               TEXT PRIMARY KEY,
  created_at       TEXT NOT NULL,
  evaluation_date  TEXT NOT NULL,
  a                REAL NOT NULL,
  sigma            REAL NOT NULL,
  b                REAL NOT NULL,
  eta              REAL NOT NULL,
  rho              REAL NOT NULL,
  alpha            REAL NOT NULL,
  beta             REAL NOT NULL,
  sigma_1          REAL NOT NULL,
  sigma_2          REAL NOT NULL,
  rho_bar          REAL NOT NULL,
  cumulative_error REAL NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS run_rows (
  run_id             TEXT NOT NULL REFERENCES runs (id) ON DELETE CASCADE,
  position           INTEGER NOT NULL,
  label              TEXT NOT NULL DEFAULT '',
  model_price        REAL NOT NULL,
  market_price       REAL NOT NULL,
  implied_volatility REAL NOT NULL,
  market_volatility  REAL NOT NULL,
  relative_error     REAL NOT NULL,
  volatility_error   REAL NOT NULL,
  PRIMARY KEY (run_id, position)
)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
  prefix       TEXT PRIMARY KEY,
  token        TEXT NOT NULL,
  generated_at TEXT NOT NULL,
  expired_at   TEXT NOT NULL
)`,
}

// ConnectDB opens the sqlite database at path (":memory:" for a private
// in-memory database) and creates the schema.
func ConnectDB(ctx context.Context, path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// sqlite serialises writers; one connection also keeps ":memory:" shared.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}
	if err := Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Migrate creates missing tables.
func Migrate(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return errors.Wrap(err, "enable foreign keys")
	}
	for _, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "migrate")
		}
	}
	return nil
}
