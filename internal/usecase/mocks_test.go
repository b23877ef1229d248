//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/adapter"
	"club-bridge/internal/infra/db/memstore"
	"club-bridge/internal/infra/i18n"
	"club-bridge/internal/usecase"

	"github.com/rs/zerolog"
)

// --- Mock Telegram Bot

type MockTelegramBot struct {
	mu       sync.Mutex
	Sent     []adapter.SendMessageParams
	SendFunc func(ctx context.Context, params adapter.SendMessageParams) error
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, params)
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(ctx, params)
	}
	return nil
}

func (m *MockTelegramBot) Messages() []adapter.SendMessageParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]adapter.SendMessageParams, len(m.Sent))
	copy(out, m.Sent)
	return out
}

// --- Stub rate limiter

type stubLimiter struct {
	allow     bool
	err       error
	recordErr error
	calls     int
	recorded  []string
}

func (s *stubLimiter) AllowComment(ctx context.Context, userID string) (bool, error) {
	s.calls++
	return s.allow, s.err
}

func (s *stubLimiter) RecordComment(ctx context.Context, userID string) error {
	if s.recordErr != nil {
		return s.recordErr
	}
	s.recorded = append(s.recorded, userID)
	return nil
}

// --- Stub horoscope

type stubHoroscope struct {
	h     *model.Horoscope
	err   error
	panic bool
}

func (s *stubHoroscope) Horoscope(ctx context.Context) (*model.Horoscope, error) {
	if s.panic {
		panic("boom")
	}
	return s.h, s.err
}

// --- Helpers

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	return tr
}

func newTestLinks() usecase.Links { return usecase.NewLinks("https://club.test/") }

// monday10 is Monday 2024-06-10 12:00 UTC, a plain 24h daily.
var monday10 = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func hoursAgo(h int) time.Time { return monday10.Add(-time.Duration(h) * time.Hour) }

func newDigestUC(store *memstore.Store, horoscope adapter.HoroscopeSource) usecase.DigestUseCase {
	agg := usecase.NewContentAggregator(store, store.Posts, store.Comments, store)
	picker := usecase.NewHighlightPicker(store.Posts, store.Comments)
	opts := usecase.DigestOptions{
		LaunchDate:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		HoroscopeTimeout: 50 * time.Millisecond,
	}
	return usecase.NewDigestUseCase(store, store, agg, picker, horoscope, opts, newTestLogger())
}
