package repository

import (
	"context"

	"club-bridge/internal/domain/model"
)

// PostFilter selects visible posts published inside Window. Zero values mean
// "no constraint". Results are ordered by upvotes desc, published_at asc, id asc.
type PostFilter struct {
	Window         model.Window
	Types          []model.PostType
	ExcludeTypes   []model.PostType
	ExcludeIDs     []string
	OnlyApproved   bool
	LabelCode      string
	MinUpvotes     int
	URLContainsAny []string
	Limit          int
}

// CommentFilter selects visible, non-deleted comments created inside Window.
// Results are ordered by upvotes desc, created_at asc, id asc.
type CommentFilter struct {
	Window          model.Window
	ExcludeIDs      []string
	MinUpvotes      int
	TextContainsAny []string
	Limit           int
}

type PostRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Post, error)
	Find(ctx context.Context, tx Tx, f PostFilter) ([]*model.Post, error)
	// FindIntroByAuthor returns the user's intro post regardless of visibility.
	FindIntroByAuthor(ctx context.Context, tx Tx, authorID string) (*model.Post, error)
}

type CommentRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Comment, error)
	Create(ctx context.Context, tx Tx, c *model.Comment) error
	Find(ctx context.Context, tx Tx, f CommentFilter) ([]*model.CommentWithPost, error)
	// CountOnPostsOf groups visible comments on the author's posts by post.
	CountOnPostsOf(ctx context.Context, tx Tx, authorID string, w model.Window) ([]model.ActivityCount, error)
	// CountRepliesTo groups visible replies to the author's comments by post.
	CountRepliesTo(ctx context.Context, tx Tx, authorID string, w model.Window) ([]model.ActivityCount, error)
}

type VoteRepository interface {
	// CountReceived sums post and comment votes cast for the author's content.
	CountReceived(ctx context.Context, tx Tx, authorID string, w model.Window) (int, error)
}

type SettingsRepository interface {
	// DigestIntro is the editor's foreword for the weekly issue; empty when unset.
	DigestIntro(ctx context.Context, tx Tx) (string, error)
}
