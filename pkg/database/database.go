// Package database opens the SQLite store used for alerts and
// complaints. Chat history is never written here.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sajjad939/safechild-lite/internal/config"
)

// schema holds the migrations applied at startup. Alerts and
// complaints are append-mostly, so plain DDL is enough.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS alerts (
		id          TEXT PRIMARY KEY,
		severity    TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'active',
		description TEXT NOT NULL DEFAULT '',
		location    TEXT NOT NULL DEFAULT '',
		child_name  TEXT NOT NULL DEFAULT '',
		session_id  TEXT NOT NULL DEFAULT '',
		contacts    TEXT NOT NULL DEFAULT '[]',
		next_steps  TEXT NOT NULL DEFAULT '[]',
		sms_sent    INTEGER NOT NULL DEFAULT 0,
		created_at  TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS complaints (
		id            TEXT PRIMARY KEY,
		reporter_name TEXT NOT NULL,
		child_name    TEXT NOT NULL DEFAULT '',
		incident_date TEXT NOT NULL DEFAULT '',
		location      TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL,
		draft_text    TEXT NOT NULL DEFAULT '',
		pdf_path      TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_created_at ON complaints (created_at DESC)`,
}

// Open connects to the SQLite database and applies the schema.
func Open(cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", cfg.Path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 {
		// SQLite serializes writers anyway.
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	logger.Info("database ready", "path", cfg.Path)
	return db, nil
}
