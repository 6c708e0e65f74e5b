package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Connect opens (or creates) the SQLite database, enables WAL and runs
// migrations.
func Connect(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so the HTTP facade can read while a cycle writes.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			category         TEXT NOT NULL DEFAULT '',
			source           TEXT NOT NULL DEFAULT '',
			description      TEXT NOT NULL DEFAULT '',
			url              TEXT NOT NULL DEFAULT '',
			token_symbol     TEXT NOT NULL DEFAULT '',
			tvl              REAL NOT NULL DEFAULT 0,
			status           TEXT NOT NULL DEFAULT 'new',
			discovered_at    INTEGER NOT NULL,
			confidence_score REAL,
			verdict          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status, discovered_at)`,

		`CREATE TABLE IF NOT EXISTS analyses (
			id          TEXT PRIMARY KEY,
			project_id  TEXT NOT NULL,
			result_json TEXT NOT NULL DEFAULT '{}',
			created_at  INTEGER NOT NULL,
			FOREIGN KEY (project_id) REFERENCES projects (id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_project ON analyses(project_id, created_at)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
