// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// CachedCompletion is one row of the completion cache.
type CachedCompletion struct {
	Engine     string    `json:"engine" yaml:"engine"`
	Prompt     string    `json:"prompt" yaml:"prompt"`
	Completion string    `json:"completion" yaml:"completion"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// Cache persists completions keyed by (engine, prompt). Client records the
// model name as the engine.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the SQLite completion cache at path.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening completion cache: %w", err)
	}

	c := &Cache{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cache (
			engine TEXT NOT NULL,
			prompt TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (engine, prompt)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cache_created_at ON cache(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Get returns a cached completion and whether it was present.
func (c *Cache) Get(ctx context.Context, engine, prompt string) (string, bool, error) {
	var payload string
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM cache WHERE engine = ? AND prompt = ?`, engine, prompt,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying completion cache: %w", err)
	}
	return payload, true, nil
}

// Put stores a completion, replacing any earlier one for the same key.
func (c *Cache) Put(ctx context.Context, engine, prompt, completion string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO cache (engine, prompt, payload, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(engine, prompt) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		engine, prompt, completion, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing completion cache: %w", err)
	}
	return nil
}

// Entries lists cached completions oldest first. A non-empty match keeps
// only entries whose prompt or completion contains it.
func (c *Cache) Entries(ctx context.Context, match string) ([]CachedCompletion, error) {
	query := `SELECT engine, prompt, payload, created_at FROM cache`
	var args []any
	if match != "" {
		query += ` WHERE instr(prompt, ?) > 0 OR instr(payload, ?) > 0`
		args = append(args, match, match)
	}
	query += ` ORDER BY created_at, engine, prompt`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing completion cache: %w", err)
	}
	defer rows.Close()

	var out []CachedCompletion
	for rows.Next() {
		var e CachedCompletion
		var created string
		if err := rows.Scan(&e.Engine, &e.Prompt, &e.Completion, &created); err != nil {
			return nil, fmt.Errorf("scanning cache row: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}
