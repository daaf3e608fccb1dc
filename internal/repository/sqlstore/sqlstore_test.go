package sqlstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// newTestStore returns a migrated in-memory SQLite store.
// The pool is pinned to one connection for sqlite, so every query in the
// test sees the same ":memory:" database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite", ":memory:", 10)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test store: %v", err)
	}
	return s
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open("oracle", "whatever", 10); err == nil {
		t.Fatal("Open() should reject an unsupported driver")
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if s.Driver() != "sqlite" {
		t.Errorf("Driver() = %q, want sqlite", s.Driver())
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)

	// Second and third runs must be no-ops.
	for i := 0; i < 2; i++ {
		if err := s.Migrate(context.Background()); err != nil {
			t.Fatalf("Migrate() run %d error = %v", i+2, err)
		}
	}
}

func TestMigrate_AddsGenderToOlderSchema(t *testing.T) {
	s, err := Open("sqlite", ":memory:", 1)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	// The first users table had no gender column.
	_, err = s.conn.ExecContext(ctx, `
		CREATE TABLE users (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			bio        TEXT,
			image      TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		t.Fatalf("creating legacy table: %v", err)
	}

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	var count int
	if err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info('users') WHERE name = 'gender'`,
	).Scan(&count); err != nil {
		t.Fatalf("checking column: %v", err)
	}
	if count != 1 {
		t.Errorf("gender column count = %d, want 1", count)
	}
}

func TestMigrate_ReportsFailures(t *testing.T) {
	s, err := Open("sqlite", ":memory:", 1)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	s.Close()

	if err := s.Migrate(context.Background()); err == nil {
		t.Fatal("Migrate() on a closed pool should return an error")
	}
}

func TestEnsureDir(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "nested", "dir", "app.db")

	if err := EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if fi, err := os.Stat(filepath.Dir(path)); err != nil || !fi.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}

	for _, dsn := range []string{"", ":memory:", "file:test.db?cache=shared"} {
		if err := EnsureDir(dsn); err != nil {
			t.Errorf("EnsureDir(%q) error = %v", dsn, err)
		}
	}
}
