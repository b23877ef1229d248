//go:build !integration

package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"club-bridge/internal/domain/model"
)

type stubHoroscope struct {
	calls int
	h     *model.Horoscope
	err   error
}

func (s *stubHoroscope) Horoscope(ctx context.Context) (*model.Horoscope, error) {
	s.calls++
	return s.h, s.err
}

func TestHoroscopeCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss goes upstream then hits", func(t *testing.T) {
		up := &stubHoroscope{h: &model.Horoscope{Phase: "full", Text: "Луна в Козероге"}}
		c := NewHoroscopeCache(newMemRedis(), up, time.Hour)

		for i := 0; i < 3; i++ {
			h, err := c.Horoscope(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.Text != "Луна в Козероге" {
				t.Errorf("unexpected text %q", h.Text)
			}
		}
		if up.calls != 1 {
			t.Errorf("expected one upstream call, got %d", up.calls)
		}
	})

	t.Run("upstream error is returned and nothing cached", func(t *testing.T) {
		mem := newMemRedis()
		up := &stubHoroscope{err: errors.New("down")}
		c := NewHoroscopeCache(mem, up, time.Hour)
		if _, err := c.Horoscope(ctx); err == nil {
			t.Fatal("expected upstream error")
		}
		if _, ok := mem.data[horoscopeKey]; ok {
			t.Error("failed fetch must not be cached")
		}
	})

	t.Run("refresh overwrites", func(t *testing.T) {
		mem := newMemRedis()
		up := &stubHoroscope{h: &model.Horoscope{Text: "old"}}
		c := NewHoroscopeCache(mem, up, time.Minute)
		_, _ = c.Horoscope(ctx)
		up.h = &model.Horoscope{Text: "new"}
		if _, err := c.Refresh(ctx); err != nil {
			t.Fatalf("refresh failed: %v", err)
		}
		h, _ := c.Horoscope(ctx)
		if h.Text != "new" {
			t.Errorf("expected refreshed text, got %q", h.Text)
		}
		if mem.expires[horoscopeKey] != time.Minute {
			t.Errorf("expected ttl to be applied, got %s", mem.expires[horoscopeKey])
		}
	})
}
