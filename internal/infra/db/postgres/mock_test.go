//go:build !integration

package postgres

import (
	"context"
	"time"

	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/repository"
	red "club-bridge/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerUserRepo mocks the database repository that the User decorator wraps.
type mockInnerUserRepo struct {
	SaveFunc             func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByTelegramIDFunc func(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error)
	FindByIDFunc         func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
	FindBySlugFunc       func(ctx context.Context, tx repository.Tx, slug string) (*model.User, error)
	CountReviewedFunc    func(ctx context.Context, tx repository.Tx, w model.Window) (int, error)
}

func (m *mockInnerUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	return m.SaveFunc(ctx, tx, u)
}
func (m *mockInnerUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	return m.FindByTelegramIDFunc(ctx, tx, tgID)
}
func (m *mockInnerUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerUserRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.User, error) {
	return m.FindBySlugFunc(ctx, tx, slug)
}
func (m *mockInnerUserRepo) CountReviewed(ctx context.Context, tx repository.Tx, w model.Window) (int, error) {
	return m.CountReviewedFunc(ctx, tx, w)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc         func(ctx context.Context, key string) (string, error)
	SetFunc         func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc         func(ctx context.Context, keys ...string) error
	PingFunc        func(ctx context.Context) error
	IncrWithTTLFunc func(ctx context.Context, key string, ttl time.Duration) (int64, error)
	CloseFunc       func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return m.IncrWithTTLFunc(ctx, key, ttl)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
