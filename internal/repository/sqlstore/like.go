package sqlstore

import (
	"context"
	"fmt"

	"github.com/sakif/matchboard/internal/model"
)

// CreateLike appends a row to the likes log. There is no uniqueness check:
// liking the same person twice stores two rows.
func (s *Store) CreateLike(ctx context.Context, like *model.Like) error {
	like.CreatedAt = now()

	id, err := s.insert(ctx,
		`INSERT INTO likes (liker_email, liked_email, created_at) VALUES (?, ?, ?)`,
		like.LikerEmail, like.LikedEmail, like.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: inserting like %s -> %s: %w", like.LikerEmail, like.LikedEmail, err)
	}

	like.ID = id
	return nil
}

// CountLikesReceived counts every like row pointing at email, duplicates included.
func (s *Store) CountLikesReceived(ctx context.Context, email string) (int64, error) {
	var count int64
	err := s.conn.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM likes WHERE liked_email = ?`),
		email,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: counting likes for %s: %w", email, err)
	}
	return count, nil
}
