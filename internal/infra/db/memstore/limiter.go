package memstore

import (
	"context"
	"time"

	"club-bridge/internal/domain/ports/adapter"
)

var _ adapter.CommentRateLimiter = (*Limiter)(nil)

// Limiter counts the comments a user already has in the store over the last
// day. It stands in for the redis limiter when dev mode runs without redis.
// Its window rolls, while the redis one is fixed from the first comment.
type Limiter struct {
	store *Store
	limit int
	now   func() time.Time
}

func NewLimiter(store *Store, dailyLimit int) *Limiter {
	return &Limiter{store: store, limit: dailyLimit, now: time.Now}
}

func (l *Limiter) AllowComment(ctx context.Context, userID string) (bool, error) {
	since := l.now().Add(-24 * time.Hour)
	n := 0
	for _, c := range l.store.CommentsByAuthor(userID) {
		if c.CreatedAt.After(since) {
			n++
		}
	}
	return n < l.limit, nil
}

// RecordComment is a no-op: the stored comment itself is what gets counted.
func (l *Limiter) RecordComment(ctx context.Context, userID string) error { return nil }
