package pkgregistry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/buildgen/internal/errs"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS package_registry (
	package TEXT NOT NULL,
	hash    TEXT NOT NULL,
	content TEXT NOT NULL,
	PRIMARY KEY (package, hash)
)`

// SQLiteBackend stores entries in a SQLite database, one row per
// (package, hash).
type SQLiteBackend struct {
	sqlDB *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errs.Configuration("sqlite package registry path is required")
	}

	dsn := path
	if path != ":memory:" {
		cleanPath := filepath.Clean(path)
		if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
			return nil, errs.Wrap(errs.KindIO, "create package registry directory", err)
		}
		dsn = cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create package_registry table: %w", err)
	}
	return &SQLiteBackend{sqlDB: sqlDB}, nil
}

// Has implements Backend.
func (b *SQLiteBackend) Has(ctx context.Context, pkg, hash string) (bool, error) {
	var n int
	err := b.sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM package_registry WHERE package = ? AND hash = ?`, pkg, hash).Scan(&n)
	if err != nil {
		return false, errs.Wrap(errs.KindIO, "Cannot query package registry database", err)
	}
	return n > 0, nil
}

// Put implements Backend.
func (b *SQLiteBackend) Put(ctx context.Context, pkg, hash, content string) error {
	_, err := b.sqlDB.ExecContext(ctx,
		`INSERT OR IGNORE INTO package_registry (package, hash, content) VALUES (?, ?, ?)`, pkg, hash, content)
	if err != nil {
		return errs.Wrap(errs.KindIO, fmt.Sprintf("Cannot insert package registry entry \"%s\" for package %s", hash, pkg), err)
	}
	return nil
}

// Entries implements Backend.
func (b *SQLiteBackend) Entries(ctx context.Context, pkg string) (map[string]string, error) {
	rows, err := b.sqlDB.QueryContext(ctx,
		`SELECT hash, content FROM package_registry WHERE package = ? ORDER BY hash`, pkg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var hash, content string
		if err := rows.Scan(&hash, &content); err != nil {
			return nil, err
		}
		entries[hash] = content
	}
	return entries, rows.Err()
}

// Close implements Backend.
func (b *SQLiteBackend) Close() error {
	if b == nil || b.sqlDB == nil {
		return nil
	}
	return b.sqlDB.Close()
}
