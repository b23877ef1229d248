package model

import "time"

// Vote is an upvote on either a post or a comment; exactly one of PostID and
// CommentID is set.
type Vote struct {
	ID        string
	UserID    string
	PostID    string
	CommentID string
	CreatedAt time.Time
}
