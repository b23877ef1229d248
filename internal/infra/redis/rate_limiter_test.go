//go:build !integration

package redis

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_Comments(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the daily limit", func(t *testing.T) {
		mem := newMemRedis()
		rl := NewRateLimiter(mem, 2)

		for i := 0; i < 2; i++ {
			ok, err := rl.AllowComment(ctx, "user-1")
			if err != nil || !ok {
				t.Fatalf("attempt %d: expected allowed, got ok=%v err=%v", i+1, ok, err)
			}
			if err := rl.RecordComment(ctx, "user-1"); err != nil {
				t.Fatalf("record %d: %v", i+1, err)
			}
		}
		ok, err := rl.AllowComment(ctx, "user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Fatal("third comment should be rate limited")
		}
	})

	t.Run("checking does not spend the budget", func(t *testing.T) {
		mem := newMemRedis()
		rl := NewRateLimiter(mem, 1)
		for i := 0; i < 3; i++ {
			if ok, _ := rl.AllowComment(ctx, "user-1"); !ok {
				t.Fatalf("check %d: expected allowed", i+1)
			}
		}
		if _, exists := mem.data[UserCommentKey("user-1")]; exists {
			t.Error("no counter must exist before a comment is recorded")
		}
	})

	t.Run("the window ttl is set when the counter is created", func(t *testing.T) {
		mem := newMemRedis()
		rl := NewRateLimiter(mem, 5)
		_ = rl.RecordComment(ctx, "user-1")

		key := UserCommentKey("user-1")
		if mem.expires[key] != 24*time.Hour {
			t.Fatalf("expected a 24h window, got %s", mem.expires[key])
		}
		// later hits must not push the window forward
		mem.expires[key] = time.Hour
		_ = rl.RecordComment(ctx, "user-1")
		if mem.expires[key] != time.Hour {
			t.Errorf("window was reset to %s", mem.expires[key])
		}
		if mem.data[key] != "2" {
			t.Errorf("counter = %s, want 2", mem.data[key])
		}
	})

	t.Run("users are counted separately", func(t *testing.T) {
		rl := NewRateLimiter(newMemRedis(), 1)
		_ = rl.RecordComment(ctx, "a")
		if ok, _ := rl.AllowComment(ctx, "a"); ok {
			t.Fatal("first user is over the limit")
		}
		if ok, _ := rl.AllowComment(ctx, "b"); !ok {
			t.Fatal("second user should be allowed")
		}
	})

	t.Run("redis errors are returned", func(t *testing.T) {
		mem := newMemRedis()
		mem.getErr = errors.New("connection refused")
		mem.incrErr = errors.New("connection refused")
		rl := NewRateLimiter(mem, 1)
		if _, err := rl.AllowComment(ctx, "a"); err == nil {
			t.Fatal("expected redis error from the check")
		}
		if err := rl.RecordComment(ctx, "a"); err == nil {
			t.Fatal("expected redis error from the record")
		}
	})
}
