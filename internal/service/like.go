package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/matchboard/internal/apperror"
	"github.com/sakif/matchboard/internal/cache"
	"github.com/sakif/matchboard/internal/model"
	"github.com/sakif/matchboard/internal/repository"
)

// LikeCounter caches received-like counts. *cache.RedisCache implements it.
//
// A fill is guarded by a version: LikeCountVersion is read before the
// database count, and StoreLikeCount drops the value if InvalidateLikeCount
// ran in between.
type LikeCounter interface {
	GetLikeCount(ctx context.Context, email string) (int64, error)
	LikeCountVersion(ctx context.Context, email string) (int64, error)
	StoreLikeCount(ctx context.Context, email string, count, version int64) (bool, error)
	InvalidateLikeCount(ctx context.Context, email string) error
}

// LikeService records likes and reports how many a user received.
type LikeService struct {
	likes   repository.LikeRepository
	counter LikeCounter // nil disables caching
	logger  *slog.Logger
}

// NewLikeService wires the service. counter may be nil.
func NewLikeService(likes repository.LikeRepository, counter LikeCounter, logger *slog.Logger) *LikeService {
	return &LikeService{likes: likes, counter: counter, logger: logger}
}

// Like appends liker -> liked to the log.
//
// No check is made that either email belongs to a user, repeated likes are
// stored again, and mutual likes are not detected.
func (s *LikeService) Like(ctx context.Context, likerEmail, likedEmail string) (*model.Like, error) {
	liker := strings.TrimSpace(likerEmail)
	liked := strings.TrimSpace(likedEmail)

	if liker == "" {
		return nil, apperror.ValidationFailed("liker_email", "liker_email is required")
	}
	if liked == "" {
		return nil, apperror.ValidationFailed("liked_email", "liked_email is required")
	}

	like := &model.Like{LikerEmail: liker, LikedEmail: liked}
	if err := s.likes.CreateLike(ctx, like); err != nil {
		s.logger.Error("failed to save like",
			slog.String("liker", liker),
			slog.String("liked", liked),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving like: %w", err)
	}

	if s.counter != nil {
		if err := s.counter.InvalidateLikeCount(ctx, liked); err != nil {
			s.logger.Warn("failed to invalidate like count",
				slog.String("email", liked),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("like saved", slog.String("liker", liker), slog.String("liked", liked))
	return like, nil
}

// CountReceived returns how many likes email has received.
// The cache is tried first; on a miss (or a cache error) the DB is counted
// and the cache refilled, unless a like arrived while counting.
func (s *LikeService) CountReceived(ctx context.Context, email string) (int64, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return 0, apperror.ValidationFailed("email", "email query parameter is required")
	}

	fill := false
	var version int64
	if s.counter != nil {
		n, err := s.counter.GetLikeCount(ctx, email)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("like count cache unavailable", slog.String("error", err.Error()))
		}

		version, err = s.counter.LikeCountVersion(ctx, email)
		if err != nil {
			s.logger.Warn("failed to read like count version", slog.String("error", err.Error()))
		} else {
			fill = true
		}
	}

	n, err := s.likes.CountLikesReceived(ctx, email)
	if err != nil {
		s.logger.Error("failed to count likes",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("counting likes: %w", err)
	}

	if fill {
		stored, err := s.counter.StoreLikeCount(ctx, email, n, version)
		switch {
		case err != nil:
			s.logger.Warn("failed to cache like count", slog.String("error", err.Error()))
		case !stored:
			s.logger.Debug("like count changed while counting, not cached", slog.String("email", email))
		}
	}
	return n, nil
}
