package usecase

import (
	"context"
	"fmt"

	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/repository"
)

// MinVideoUpvotes is the bar a video must clear to be shown as video of the week.
const MinVideoUpvotes = 3

// Video holds at most one of Comment and Post.
type Video struct {
	Comment *model.CommentWithPost
	Post    *model.Post
}

func (v Video) IsZero() bool { return v.Comment == nil && v.Post == nil }

// HighlightPicker chooses the single items that get special placement.
type HighlightPicker struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

func NewHighlightPicker(posts repository.PostRepository, comments repository.CommentRepository) *HighlightPicker {
	return &HighlightPicker{posts: posts, comments: comments}
}

// FeaturedPost is the best non-intro post in w labelled as the editor's pick. Nil when none.
func (h *HighlightPicker) FeaturedPost(ctx context.Context, w model.Window) (*model.Post, error) {
	posts, err := h.posts.Find(ctx, repository.NoTX, repository.PostFilter{
		Window:       w,
		ExcludeTypes: []model.PostType{model.PostTypeIntro},
		LabelCode:    model.LabelTopWeek,
		Limit:        1,
	})
	if err != nil {
		return nil, fmt.Errorf("find featured post: %w", err)
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return posts[0], nil
}

// TopVideo prefers a well-liked comment linking a video and falls back to a
// link post pointing at one.
func (h *HighlightPicker) TopVideo(ctx context.Context, w model.Window) (Video, error) {
	comments, err := h.comments.Find(ctx, repository.NoTX, repository.CommentFilter{
		Window:          w,
		MinUpvotes:      MinVideoUpvotes,
		TextContainsAny: model.VideoMarkers(),
		Limit:           1,
	})
	if err != nil {
		return Video{}, fmt.Errorf("find video comment: %w", err)
	}
	if len(comments) > 0 {
		return Video{Comment: comments[0]}, nil
	}

	posts, err := h.posts.Find(ctx, repository.NoTX, repository.PostFilter{
		Window:         w,
		Types:          []model.PostType{model.PostTypeLink},
		MinUpvotes:     MinVideoUpvotes,
		URLContainsAny: model.VideoMarkers(),
		Limit:          1,
	})
	if err != nil {
		return Video{}, fmt.Errorf("find video post: %w", err)
	}
	if len(posts) > 0 {
		return Video{Post: posts[0]}, nil
	}
	return Video{}, nil
}
