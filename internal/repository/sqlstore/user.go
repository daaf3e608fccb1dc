package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/matchboard/internal/apperror"
	"github.com/sakif/matchboard/internal/model"
)

const userColumns = `id, name, email, bio, image, gender, created_at`

// Create inserts a new profile. The caller's struct receives the generated
// ID and CreatedAt.
//
// A second row for the same email is rejected by the UNIQUE constraint; that
// driver error is returned as apperror.AlreadyExists so callers can tell a
// lost insert race apart from a broken database.
func (s *Store) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = now()

	const q = `INSERT INTO users (name, email, bio, image, gender, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	args := []any{
		user.Name,
		user.Email,
		nullString(user.Bio),
		nullString(user.Image),
		nullString(user.Gender),
		user.CreatedAt,
	}

	id, err := s.insert(ctx, q, args...)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return fmt.Errorf("sqlstore: inserting user: %w", apperror.AlreadyExists("user", user.Email))
		}
		return fmt.Errorf("sqlstore: inserting user (email=%s): %w", user.Email, err)
	}

	user.ID = id
	return nil
}

// GetByEmail returns apperror.ErrNotFound if no user has that email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.conn.QueryRowContext(ctx,
		s.rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`),
		email,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlstore: getting user %s: %w", email, err)
	}
	return u, nil
}

// List returns every user. No ORDER BY: callers get store order.
func (s *Store) List(ctx context.Context) ([]model.User, error) {
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users`)
}

// ListByGender returns users whose gender column equals gender.
func (s *Store) ListByGender(ctx context.Context, gender string) ([]model.User, error) {
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE gender = ?`, gender)
}

func (s *Store) queryUsers(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := s.conn.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing users: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty result encodes as [] rather than null.
	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating users: %w", err)
	}

	return users, nil
}

// scanner is the part of *sql.Row and *sql.Rows that scanUser needs.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(sc scanner) (*model.User, error) {
	var (
		u                  model.User
		bio, image, gender sql.NullString
	)
	if err := sc.Scan(&u.ID, &u.Name, &u.Email, &bio, &image, &gender, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Bio = stringPtr(bio)
	u.Image = stringPtr(image)
	u.Gender = stringPtr(gender)
	return &u, nil
}

// insert runs an INSERT and returns the new row id, using RETURNING where
// LastInsertId is not supported.
func (s *Store) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if s.dialect.returningID {
		var id int64
		err := s.conn.QueryRowContext(ctx, s.rebind(query+` RETURNING id`), args...).Scan(&id)
		return id, err
	}

	res, err := s.conn.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
