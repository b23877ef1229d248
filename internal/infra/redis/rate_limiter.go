package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"club-bridge/internal/domain/ports/adapter"
)

var _ adapter.CommentRateLimiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window counter per user. The window opens with the
// first recorded comment and lasts 24h.
type RateLimiter struct {
	client     RedisClient
	dailyLimit int
	window     time.Duration
}

func NewRateLimiter(client RedisClient, dailyLimit int) *RateLimiter {
	return &RateLimiter{client: client, dailyLimit: dailyLimit, window: 24 * time.Hour}
}

// Allow reports whether key is still under limit without spending from it.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int) (bool, error) {
	val, err := r.client.Get(ctx, key)
	if IsNil(err) {
		return limit > 0, nil
	}
	if err != nil {
		return false, err
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, fmt.Errorf("rate limit counter %s: %w", key, err)
	}
	return count < int64(limit), nil
}

// Hit spends one unit from key, opening a new window when the key is absent.
func (r *RateLimiter) Hit(ctx context.Context, key string, window time.Duration) error {
	_, err := r.client.IncrWithTTL(ctx, key, window)
	return err
}

func (r *RateLimiter) AllowComment(ctx context.Context, userID string) (bool, error) {
	return r.Allow(ctx, UserCommentKey(userID), r.dailyLimit)
}

// RecordComment counts a comment that was actually stored.
func (r *RateLimiter) RecordComment(ctx context.Context, userID string) error {
	return r.Hit(ctx, UserCommentKey(userID), r.window)
}

func UserCommentKey(userID string) string {
	return fmt.Sprintf("rate_limit:comments:%s", userID)
}
