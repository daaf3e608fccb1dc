// Package sqlstore implements the repository interfaces on database/sql.
//
// ONE STORE, THREE DIALECTS:
// The same Store type talks to MySQL (production), PostgreSQL, or SQLite
// (local development and tests). Everything that differs between them lives
// in dialect.go: DDL, placeholder style, how an inserted id comes back, and
// how a unique-key violation is recognised. The queries themselves are written
// once with "?" placeholders.
//
// CONNECTION POOL:
// sql.DB is a pool, not a connection. Open sizes it (10 by default) and never
// touches the network; Ping and Migrate are the first calls that do, so the
// caller decides whether a dead database at startup is fatal.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sakif/matchboard/internal/repository"
)

var (
	_ repository.UserRepository = (*Store)(nil)
	_ repository.LikeRepository = (*Store)(nil)
	_ repository.Pinger         = (*Store)(nil)
)

// Store owns the connection pool for its whole lifetime.
type Store struct {
	conn    *sql.DB
	dialect dialect
}

// Open creates the pool for driver ("mysql", "postgres" or "sqlite").
// It does not connect; use Ping.
func Open(driver, dsn string, poolSize int) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening %s pool: %w", driver, err)
	}

	if poolSize <= 0 {
		poolSize = 10
	}
	// SQLite serialises writers anyway, and ":memory:" databases exist per
	// connection, so a single connection keeps every caller on the same data.
	if d.name == "sqlite" {
		poolSize = 1
	}
	conn.SetMaxOpenConns(poolSize)
	conn.SetMaxIdleConns(poolSize)
	conn.SetConnMaxLifetime(30 * time.Minute)

	return &Store{conn: conn, dialect: d}, nil
}

// Driver returns the dialect name.
func (s *Store) Driver() string {
	return s.dialect.name
}

// Ping checks out a connection and verifies the server answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlstore: pinging %s: %w", s.dialect.name, err)
	}
	return nil
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Migrate creates the users and likes tables when they are missing and adds
// columns introduced after the first schema. It is safe to run repeatedly and
// from several processes at once.
//
// Every statement runs even if an earlier one failed; the returned error joins
// all failures so the caller can log each one.
func (s *Store) Migrate(ctx context.Context) error {
	var errs []error

	for _, stmt := range s.dialect.setup {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			errs = append(errs, fmt.Errorf("sqlstore: %s: %w", stmt, err))
		}
	}

	for _, t := range s.dialect.tables {
		if _, err := s.conn.ExecContext(ctx, t.ddl); err != nil {
			errs = append(errs, fmt.Errorf("sqlstore: creating %s table: %w", t.name, err))
		}
	}

	// Tables created before gender was introduced.
	if err := s.addColumnIfNotExists(ctx, "users", "gender", "VARCHAR(16)"); err != nil {
		errs = append(errs, fmt.Errorf("sqlstore: adding users.gender: %w", err))
	}

	for _, stmt := range s.dialect.indexes {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			errs = append(errs, fmt.Errorf("sqlstore: creating index: %w", err))
		}
	}

	return errors.Join(errs...)
}

// addColumnIfNotExists makes ALTER TABLE ... ADD COLUMN idempotent.
func (s *Store) addColumnIfNotExists(ctx context.Context, table, column, definition string) error {
	var count int
	err := s.conn.QueryRowContext(ctx,
		s.rebind(s.dialect.columnExists),
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = s.conn.ExecContext(ctx, fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}

// rebind rewrites "?" placeholders for dialects that number them.
func (s *Store) rebind(query string) string {
	if !s.dialect.numberedParams {
		return query
	}
	return numberPlaceholders(query)
}

// now is the timestamp stored in created_at. Second precision matches
// MySQL TIMESTAMP so the value handed back equals the value read later.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// EnsureDir creates the parent directory of a SQLite database file.
// In-memory and URI-style DSNs are left alone.
func EnsureDir(path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sqlstore: creating database directory %s: %w", dir, err)
	}
	return nil
}
