package model

import "time"

// Like is one entry in the append-only likes log.
// Neither email is checked against users, and repeats are kept.
type Like struct {
	ID         int64     `json:"id"`
	LikerEmail string    `json:"liker_email"`
	LikedEmail string    `json:"liked_email"`
	CreatedAt  time.Time `json:"created_at"`
}
