// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/NVIDIA/hostguard/pkg/defaults"
	"github.com/NVIDIA/hostguard/pkg/errors"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	module TEXT NOT NULL,
	snapshot_data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_module ON snapshots(module, id);
CREATE TABLE IF NOT EXISTS diffs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	module TEXT NOT NULL,
	differences TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_diffs_module ON diffs(module, id);
`

// Option configures Open.
type Option func(*config)

type config struct {
	busyTimeout time.Duration
	now         func() time.Time
}

// WithBusyTimeout sets PRAGMA busy_timeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(c *config) {
		c.busyTimeout = d
	}
}

// WithClock sets the time source used for row timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		busyTimeout: defaults.StoreBusyTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Open opens or creates the database at path, applies pragmas and ensures
// the schema exists.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	cfg := newConfig(opts)

	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "database path cannot be empty")
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeStorage, "failed to create database directory", err,
				map[string]any{"path": path})
		}
	}

	db, err := openDB(path, path)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, now: cfg.now}

	if err := applyPragmas(ctx, db, cfg); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// OpenReadOnly opens an existing database for queries. Nothing is created or
// migrated: a missing file is NOT_FOUND and writes fail with STORAGE.
func OpenReadOnly(ctx context.Context, path string, opts ...Option) (*Store, error) {
	cfg := newConfig(opts)

	if path == "" || path == MemoryPath {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"read-only open requires a database file", map[string]any{"path": path})
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidConfig, "invalid database path", err,
			map[string]any{"path": path})
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewWithContext(errors.ErrCodeNotFound, "database not found",
				map[string]any{"path": path})
		}
		return nil, errors.WrapWithContext(errors.ErrCodeStorage, "failed to stat database", err,
			map[string]any{"path": path})
	}

	dsn := (&url.URL{Scheme: "file", Path: abs, RawQuery: "mode=ro"}).String()
	db, err := openDB(dsn, path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, now: cfg.now}

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout.Milliseconds()),
		"PRAGMA query_only = ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, errors.WrapWithContext(errors.ErrCodeStorage, "failed to apply pragma", err,
				map[string]any{"pragma": p, "path": path})
		}
	}
	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func openDB(dsn, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeStorage, "failed to open database", err,
			map[string]any{"path": path})
	}

	// One connection: pragmas are per connection and ":memory:" is per
	// connection too.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return db, nil
}

func applyPragmas(ctx context.Context, db *sql.DB, cfg config) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout.Milliseconds()),
		"PRAGMA synchronous = FULL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return errors.WrapWithContext(errors.ErrCodeStorage, "failed to apply pragma", err,
				map[string]any{"pragma": p})
		}
	}
	return nil
}

// EnsureSchema creates the tables and indexes when missing. It is safe to
// call repeatedly.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, "failed to create schema", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, "database unreachable", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, "failed to close database", err)
	}
	return nil
}
