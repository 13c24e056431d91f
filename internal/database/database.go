// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// Config holds DuckDB connection settings.
type Config struct {
	// Path is the database file, or ":memory:" for a transient database.
	Path string `koanf:"path"`

	// Threads caps DuckDB worker threads. Zero means runtime.NumCPU().
	Threads int `koanf:"threads"`

	// MaxMemory is DuckDB's memory limit, e.g. "1GB".
	MaxMemory string `koanf:"max_memory"`

	// QueryTimeout bounds a scan whose context has no deadline. Zero leaves
	// such scans to run until the caller cancels, which full rating files need.
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// DefaultConfig returns an in-memory configuration.
func DefaultConfig() Config {
	return Config{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}
}

// DB wraps a DuckDB connection used to scan the training CSV files.
type DB struct {
	conn *sql.DB
	cfg  Config
}

// New opens a DuckDB connection.
func New(cfg Config) (*DB, error) {
	if cfg.Path == "" {
		cfg.Path = ":memory:"
	}
	if cfg.MaxMemory == "" {
		cfg.MaxMemory = "1GB"
	}
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	if cfg.Path != ":memory:" {
		// 0750 per gosec G301
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	// Row order of read_csv must match file order; index assignment depends on it.
	connStr := fmt.Sprintf("%s?threads=%d&max_memory=%s&preserve_insertion_order=true&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(numThreads)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{conn: conn, cfg: cfg}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Conn returns the underlying SQL connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// ensureContext applies QueryTimeout when ctx carries no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline || db.cfg.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, db.cfg.QueryTimeout)
}

// quoteLiteral renders s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quoteIdent renders s as a SQL identifier.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// csvSource is the read_csv table expression for path. Every column is read
// as VARCHAR so malformed values can be skipped row by row.
func csvSource(path string) string {
	return fmt.Sprintf("read_csv(%s, header=true, all_varchar=true, null_padding=true)", quoteLiteral(path))
}

// columnSpec names a logical column and the header spellings accepted for it.
type columnSpec struct {
	name     string
	accepted []string
}

// resolveColumns maps logical column names to the file's header names.
// Matching ignores case and underscores, so userId, user_id and USERID agree.
func (db *DB) resolveColumns(ctx context.Context, path string, wanted []columnSpec) (map[string]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	rows, err := db.conn.QueryContext(ctx, "SELECT * FROM "+csvSource(path)+" LIMIT 0")
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	defer closeWithLog(rows, "rows")

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	byKey := make(map[string]string, len(header))
	for _, h := range header {
		byKey[columnKey(h)] = h
	}

	resolved := make(map[string]string, len(wanted))
	for _, spec := range wanted {
		for _, name := range spec.accepted {
			if h, ok := byKey[columnKey(name)]; ok {
				resolved[spec.name] = h
				break
			}
		}
		if _, ok := resolved[spec.name]; !ok {
			return nil, &ColumnError{Path: path, Column: spec.name, Accepted: spec.accepted}
		}
	}
	return resolved, nil
}

func columnKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
}
