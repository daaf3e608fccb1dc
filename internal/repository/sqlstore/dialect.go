package sqlstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// pgUniqueViolation is SQLSTATE unique_violation.
const pgUniqueViolation = "23505"

type table struct {
	name string
	ddl  string
}

type dialect struct {
	name       string
	driverName string // as registered with database/sql

	setup   []string // run before the tables (pragmas)
	tables  []table
	indexes []string

	// columnExists counts matching columns; params: table, column.
	columnExists string

	numberedParams bool // $1, $2 instead of ?
	returningID    bool // INSERT ... RETURNING id instead of LastInsertId

	isUniqueViolation func(error) bool
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "mysql":
		return mysqlDialect, nil
	case "postgres":
		return postgresDialect, nil
	case "sqlite":
		return sqliteDialect, nil
	}
	return dialect{}, fmt.Errorf("sqlstore: unsupported driver %q", driver)
}

var mysqlDialect = dialect{
	name:       "mysql",
	driverName: "mysql",
	tables: []table{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id         INT AUTO_INCREMENT PRIMARY KEY,
				name       VARCHAR(100) NOT NULL,
				email      VARCHAR(100) NOT NULL UNIQUE,
				bio        TEXT,
				image      VARCHAR(255),
				gender     VARCHAR(16),
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`},
		// MySQL has no CREATE INDEX IF NOT EXISTS, so the index is inline.
		{"likes", `
			CREATE TABLE IF NOT EXISTS likes (
				id          INT AUTO_INCREMENT PRIMARY KEY,
				liker_email VARCHAR(100) NOT NULL,
				liked_email VARCHAR(100) NOT NULL,
				created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				INDEX idx_likes_liked_email (liked_email)
			)`},
	},
	columnExists: `SELECT COUNT(*) FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`,
	isUniqueViolation: func(err error) bool {
		var mysqlErr *mysql.MySQLError
		return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
	},
}

var postgresDialect = dialect{
	name:       "postgres",
	driverName: "postgres",
	tables: []table{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id         BIGSERIAL PRIMARY KEY,
				name       VARCHAR(100) NOT NULL,
				email      VARCHAR(100) NOT NULL UNIQUE,
				bio        TEXT,
				image      VARCHAR(255),
				gender     VARCHAR(16),
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`},
		{"likes", `
			CREATE TABLE IF NOT EXISTS likes (
				id          BIGSERIAL PRIMARY KEY,
				liker_email VARCHAR(100) NOT NULL,
				liked_email VARCHAR(100) NOT NULL,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			)`},
	},
	indexes: []string{
		`CREATE INDEX IF NOT EXISTS idx_likes_liked_email ON likes(liked_email)`,
	},
	columnExists: `SELECT COUNT(*) FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = ? AND column_name = ?`,
	numberedParams: true,
	returningID:    true,
	isUniqueViolation: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
	},
}

var sqliteDialect = dialect{
	name:       "sqlite",
	driverName: "sqlite",
	setup: []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	},
	tables: []table{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				name       TEXT NOT NULL,
				email      TEXT NOT NULL UNIQUE,
				bio        TEXT,
				image      TEXT,
				gender     TEXT,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`},
		{"likes", `
			CREATE TABLE IF NOT EXISTS likes (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				liker_email TEXT NOT NULL,
				liked_email TEXT NOT NULL,
				created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`},
	},
	indexes: []string{
		`CREATE INDEX IF NOT EXISTS idx_likes_liked_email ON likes(liked_email)`,
	},
	columnExists:      `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
	isUniqueViolation: isSQLiteUniqueViolation,
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// Primary code only, when extended codes are off.
		return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}

// numberPlaceholders turns "a = ? AND b = ?" into "a = $1 AND b = $2".
// Queries in this package never contain a literal question mark.
func numberPlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
