package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Config locates the snapshot archive.
type Config struct {
	Path        string
	BusyTimeout time.Duration
}

// DefaultConfig reads LOREMAKER_DB_PATH, falling back to
// ~/.loremaker/snapshots.db.
func DefaultConfig() Config {
	cfg := Config{BusyTimeout: 5 * time.Second}
	if p := os.Getenv("LOREMAKER_DB_PATH"); p != "" {
		cfg.Path = p
		return cfg
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	cfg.Path = filepath.Join(home, ".loremaker", "snapshots.db")
	return cfg
}

// DSN carries the pragmas as driver options so every pooled connection gets
// them, not just the first.
func (c Config) DSN() string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_journal_mode", "WAL")
	if c.BusyTimeout > 0 {
		q.Set("_busy_timeout", strconv.FormatInt(c.BusyTimeout.Milliseconds(), 10))
	}
	return "file:" + c.Path + "?" + q.Encode()
}

// Open creates the parent directory if needed and returns a pinged handle.
func Open(cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("open sqlite: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}
