package adapter

import (
	"context"

	"club-bridge/internal/domain/model"
)

// HoroscopeSource provides the decorative mood text for daily digests.
type HoroscopeSource interface {
	Horoscope(ctx context.Context) (*model.Horoscope, error)
}

// CommentRateLimiter decides whether a user may post another comment now.
// AllowComment only reads the budget; RecordComment spends it once the
// comment exists.
type CommentRateLimiter interface {
	AllowComment(ctx context.Context, userID string) (bool, error)
	RecordComment(ctx context.Context, userID string) error
}
