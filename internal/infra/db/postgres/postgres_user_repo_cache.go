package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/repository"
	"club-bridge/internal/infra/metrics"
	red "club-bridge/internal/infra/redis"
)

var _ repository.UserRepository = (*userRepoCacheDecorator)(nil)

// userRepoCacheDecorator caches lookups by telegram id and user id. The reply
// bridge resolves the sender on every chat message, so that path is hot.
// Reads inside a transaction always go to the database.
type userRepoCacheDecorator struct {
	inner repository.UserRepository
	cache red.RedisClient
	ttl   time.Duration
	tgTTL time.Duration
}

// telegramLinkTTL caps the telegram id key. The site links and unlinks
// accounts without telling the bridge, so a stale entry must age out fast.
const telegramLinkTTL = 5 * time.Minute

func NewUserRepoCacheDecorator(inner repository.UserRepository, cache red.RedisClient, ttl time.Duration) repository.UserRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	tgTTL := telegramLinkTTL
	if ttl < tgTTL {
		tgTTL = ttl
	}
	return &userRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   ttl,
		tgTTL: tgTTL,
	}
}

func userIDKey(id string) string  { return fmt.Sprintf("user:id:%s", id) }
func userTgKey(tgID int64) string { return fmt.Sprintf("user:tgid:%d", tgID) }

// Save invalidates every key the user may be cached under.
func (d *userRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	_ = d.cache.Del(ctx, userIDKey(u.ID))
	if u.TelegramID > 0 {
		_ = d.cache.Del(ctx, userTgKey(u.TelegramID))
	}
	return d.inner.Save(ctx, tx, u)
}

func (d *userRepoCacheDecorator) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	if tx != nil {
		return d.inner.FindByTelegramID(ctx, tx, tgID)
	}
	if u, ok := d.lookup(ctx, userTgKey(tgID)); ok {
		return u, nil
	}
	u, err := d.inner.FindByTelegramID(ctx, tx, tgID)
	if err != nil {
		return nil, err
	}
	d.store(ctx, u)
	return u, nil
}

func (d *userRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	if u, ok := d.lookup(ctx, userIDKey(id)); ok {
		return u, nil
	}
	u, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	d.store(ctx, u)
	return u, nil
}

func (d *userRepoCacheDecorator) lookup(ctx context.Context, key string) (*model.User, bool) {
	val, err := d.cache.Get(ctx, key)
	switch {
	case err == nil:
		var user model.User
		if json.Unmarshal([]byte(val), &user) == nil {
			metrics.IncCacheRequest("user", "hit")
			return &user, true
		}
	case !red.IsNil(err):
		metrics.IncCacheRequest("user", "error")
		return nil, false
	}
	metrics.IncCacheRequest("user", "miss")
	return nil, false
}

// store warms both keys so either lookup hits next time. The telegram key
// gets the shorter tgTTL.
func (d *userRepoCacheDecorator) store(ctx context.Context, u *model.User) {
	if u == nil {
		return
	}
	b, err := json.Marshal(u)
	if err != nil {
		return
	}
	_ = d.cache.Set(ctx, userIDKey(u.ID), b, d.ttl)
	if u.TelegramID > 0 {
		_ = d.cache.Set(ctx, userTgKey(u.TelegramID), b, d.tgTTL)
	}
}

// Pass-through methods that don't need caching
func (d *userRepoCacheDecorator) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.User, error) {
	return d.inner.FindBySlug(ctx, tx, slug)
}

func (d *userRepoCacheDecorator) CountReviewed(ctx context.Context, tx repository.Tx, w model.Window) (int, error) {
	return d.inner.CountReviewed(ctx, tx, w)
}
