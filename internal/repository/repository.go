// Package repository declares the storage contracts the service layer depends on.
// internal/repository/sqlstore implements them on database/sql.
package repository

import (
	"context"

	"github.com/sakif/matchboard/internal/model"
)

// UserRepository stores profiles keyed by email.
type UserRepository interface {
	// Create inserts user and fills in ID and CreatedAt.
	// A duplicate email yields an error matching apperror.ErrConflict.
	Create(ctx context.Context, user *model.User) error
	// GetByEmail returns apperror.ErrNotFound when no row matches.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// List returns every user in store order.
	List(ctx context.Context) ([]model.User, error)
	// ListByGender returns users whose gender equals gender exactly.
	ListByGender(ctx context.Context, gender string) ([]model.User, error)
}

// LikeRepository appends to the likes log.
type LikeRepository interface {
	CreateLike(ctx context.Context, like *model.Like) error
	// CountLikesReceived counts rows whose liked_email is email.
	CountLikesReceived(ctx context.Context, email string) (int64, error)
}

// Pinger is satisfied by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
