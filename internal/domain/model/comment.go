package model

import (
	"encoding/json"
	"time"

	"club-bridge/internal/domain"

	"github.com/google/uuid"
)

// Comment is a threaded reply to a post. ReplyToID is empty for top-level comments.
type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	ReplyToID string
	Text      string
	Upvotes   int
	IsVisible bool
	IsDeleted bool
	UserAgent string
	Metadata  json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewComment builds a visible comment ready to be stored.
func NewComment(postID, authorID, replyToID, text string) (*Comment, error) {
	if postID == "" || authorID == "" || text == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  authorID,
		ReplyToID: replyToID,
		Text:      text,
		IsVisible: true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (c *Comment) IsTopLevel() bool { return c.ReplyToID == "" }

// IsShown is true for comments that may appear in digests.
func (c *Comment) IsShown() bool { return c.IsVisible && !c.IsDeleted }

// CommentWithPost carries the post a comment belongs to, as digests link to both.
type CommentWithPost struct {
	Comment
	PostSlug   string
	PostType   PostType
	PostTitle  string
	AuthorSlug string
	AuthorName string
}
