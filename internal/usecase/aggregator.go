package usecase

import (
	"context"
	"fmt"

	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/repository"
)

// Digest body sizes.
const (
	DailyPostLimit     = 100
	DailyCommentLimit  = 1
	WeeklyPostLimit    = 12
	WeeklyCommentLimit = 3
)

// digestExcludedTypes never appear in the general post lists.
var digestExcludedTypes = []model.PostType{model.PostTypeIntro, model.PostTypeWeeklyDigest}

// ContentAggregator runs the windowed queries that feed both digests.
type ContentAggregator struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	votes    repository.VoteRepository
}

func NewContentAggregator(users repository.UserRepository, posts repository.PostRepository, comments repository.CommentRepository, votes repository.VoteRepository) *ContentAggregator {
	return &ContentAggregator{users: users, posts: posts, comments: comments, votes: votes}
}

// ActivityForUser lists what happened to the user's content in w: comments on
// their posts and replies to their comments, grouped by post, followed by a
// single upvotes total that is always present.
func (a *ContentAggregator) ActivityForUser(ctx context.Context, userID string, w model.Window) ([]model.Activity, error) {
	onPosts, err := a.comments.CountOnPostsOf(ctx, repository.NoTX, userID, w)
	if err != nil {
		return nil, fmt.Errorf("count post comments: %w", err)
	}
	replies, err := a.comments.CountRepliesTo(ctx, repository.NoTX, userID, w)
	if err != nil {
		return nil, fmt.Errorf("count replies: %w", err)
	}
	upvotes, err := a.votes.CountReceived(ctx, repository.NoTX, userID, w)
	if err != nil {
		return nil, fmt.Errorf("count upvotes: %w", err)
	}

	out := make([]model.Activity, 0, len(onPosts)+len(replies)+1)
	out = appendActivity(out, model.ActivityPostComment, onPosts)
	out = appendActivity(out, model.ActivityReply, replies)
	out = append(out, model.Activity{Kind: model.ActivityUpvotes, Count: upvotes})
	return out, nil
}

func appendActivity(out []model.Activity, kind model.ActivityKind, rows []model.ActivityCount) []model.Activity {
	for _, r := range rows {
		ref := r.Post
		out = append(out, model.Activity{Kind: kind, Post: &ref, Count: r.Count})
	}
	return out
}

// TopContent returns approved posts published in w, best first, skipping
// intros, digest issues and any post in exclude.
func (a *ContentAggregator) TopContent(ctx context.Context, w model.Window, limit int, exclude ...string) ([]*model.Post, error) {
	return a.posts.Find(ctx, repository.NoTX, repository.PostFilter{
		Window:       w,
		ExcludeTypes: digestExcludedTypes,
		ExcludeIDs:   exclude,
		OnlyApproved: true,
		Limit:        limit,
	})
}

// TopComments returns shown comments created in w, best first.
func (a *ContentAggregator) TopComments(ctx context.Context, w model.Window, limit int, exclude ...string) ([]*model.CommentWithPost, error) {
	return a.comments.Find(ctx, repository.NoTX, repository.CommentFilter{
		Window:     w,
		ExcludeIDs: exclude,
		Limit:      limit,
	})
}

// NewMembers returns approved intro posts published in w and the number of
// profiles that passed review in w.
func (a *ContentAggregator) NewMembers(ctx context.Context, w model.Window) ([]*model.Post, int, error) {
	intros, err := a.posts.Find(ctx, repository.NoTX, repository.PostFilter{
		Window:       w,
		Types:        []model.PostType{model.PostTypeIntro},
		OnlyApproved: true,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("find intros: %w", err)
	}
	n, err := a.users.CountReviewed(ctx, repository.NoTX, w)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviewed: %w", err)
	}
	return intros, n, nil
}
