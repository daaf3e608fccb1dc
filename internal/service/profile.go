// Package service contains the business rules of the profile service.
//
// Handlers parse HTTP and call into this package with plain values; the
// services validate, talk to storage through the repository interfaces, and
// return model types or *apperror.AppError values. Nothing here knows about
// HTTP status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sakif/matchboard/internal/apperror"
	"github.com/sakif/matchboard/internal/imagestore"
	"github.com/sakif/matchboard/internal/model"
	"github.com/sakif/matchboard/internal/repository"
)

// Listing modes, matching config.ListOpposite / config.ListAll.
const (
	ListOpposite = "opposite"
	ListAll      = "all"
)

// ImageUpload is an optional file attached to a profile upload.
type ImageUpload struct {
	Filename string // client-supplied name; only its extension is kept
	Body     io.Reader
}

// UploadInput is the raw form data of POST /upload.
type UploadInput struct {
	Name   string
	Email  string
	Bio    string
	Gender string
	Image  *ImageUpload
}

// UploadResult says which row the caller gets back and whether it is new.
type UploadResult struct {
	User    *model.User
	Created bool
}

// ProfileService handles profile uploads and listings.
type ProfileService struct {
	users    repository.UserRepository
	images   imagestore.Store
	listMode string
	logger   *slog.Logger
}

// NewProfileService wires the service. An unknown listMode behaves as ListOpposite.
func NewProfileService(users repository.UserRepository, images imagestore.Store, listMode string, logger *slog.Logger) *ProfileService {
	if listMode != ListAll {
		listMode = ListOpposite
	}
	return &ProfileService{
		users:    users,
		images:   images,
		listMode: listMode,
		logger:   logger,
	}
}

// ListMode reports how ListUsers filters.
func (s *ProfileService) ListMode() string {
	return s.listMode
}

// Upload creates a profile, or returns the stored one when the email is taken.
//
// FIRST WRITE WINS:
// A profile is never updated. If the email already exists the stored row is
// returned as-is and the submitted bio, gender and image are discarded.
//
// ORDER OF EFFECTS:
//  1. name and email are checked; nothing is written if either is missing
//  2. the image, if any, is saved (even when the email turns out to exist)
//  3. lookup by email; found -> existing row
//  4. insert; a unique-key conflict means a concurrent upload won the race,
//     so the winner's row is re-read and returned exactly as in step 3
//
// A failed insert leaves the saved image in place.
func (s *ProfileService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}

	var image *string
	if in.Image != nil {
		stored, err := s.images.Save(ctx, in.Image.Filename, in.Image.Body)
		if err != nil {
			s.logger.Error("failed to store image",
				slog.String("email", email),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("storing image: %w", err)
		}
		image = &stored
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.Info("user already exists", slog.String("email", email))
		return &UploadResult{User: existing}, nil
	case !errors.Is(err, apperror.ErrNotFound):
		s.logger.Error("failed to check user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("checking user: %w", err)
	}

	user := &model.User{
		Name:   name,
		Email:  email,
		Bio:    model.StringPtr(strings.TrimSpace(in.Bio)),
		Image:  image,
		Gender: model.StringPtr(strings.TrimSpace(in.Gender)),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return s.raceLost(ctx, email)
		}
		s.logger.Error("failed to save profile",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving profile: %w", err)
	}

	s.logger.Info("new profile created",
		slog.Int64("id", user.ID),
		slog.String("email", user.Email),
	)
	return &UploadResult{User: user, Created: true}, nil
}

// raceLost handles an insert that hit the unique email constraint after the
// lookup found nothing.
func (s *ProfileService) raceLost(ctx context.Context, email string) (*UploadResult, error) {
	s.logger.Info("concurrent upload created user first", slog.String("email", email))

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("failed to re-read user after conflict",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("re-reading user after conflict: %w", err)
	}
	return &UploadResult{User: existing}, nil
}

// ListUsers returns the profiles shown to requesterEmail.
//
// In ListOpposite mode the requester must exist; the result is every user
// whose gender equals model.OppositeGender of the requester's. A requester
// that is not stored is an error, never an empty list. In ListAll mode
// requesterEmail is ignored and everyone is returned.
func (s *ProfileService) ListUsers(ctx context.Context, requesterEmail string) ([]model.User, error) {
	if s.listMode == ListAll {
		users, err := s.users.List(ctx)
		if err != nil {
			s.logger.Error("failed to fetch users", slog.String("error", err.Error()))
			return nil, fmt.Errorf("listing users: %w", err)
		}
		return users, nil
	}

	email := strings.TrimSpace(requesterEmail)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email query parameter is required")
	}

	requester, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("failed to fetch requester",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("looking up requester: %w", err)
	}

	opposite := model.OppositeGender(requester.Gender)
	users, err := s.users.ListByGender(ctx, opposite)
	if err != nil {
		s.logger.Error("failed to fetch users",
			slog.String("gender", opposite),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing users by gender: %w", err)
	}
	return users, nil
}
