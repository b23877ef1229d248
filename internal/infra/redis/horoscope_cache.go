package redis

import (
	"context"
	"encoding/json"
	"time"

	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/adapter"
	"club-bridge/internal/infra/metrics"
)

const horoscopeKey = "digest:horoscope"

var _ adapter.HoroscopeSource = (*HoroscopeCache)(nil)

// HoroscopeCache serves the mood text from redis and falls through to the
// upstream source on a miss.
type HoroscopeCache struct {
	client   RedisClient
	upstream adapter.HoroscopeSource
	ttl      time.Duration
}

func NewHoroscopeCache(client RedisClient, upstream adapter.HoroscopeSource, ttl time.Duration) *HoroscopeCache {
	return &HoroscopeCache{client: client, upstream: upstream, ttl: ttl}
}

func (c *HoroscopeCache) Horoscope(ctx context.Context) (*model.Horoscope, error) {
	if val, err := c.client.Get(ctx, horoscopeKey); err == nil {
		var h model.Horoscope
		if json.Unmarshal([]byte(val), &h) == nil {
			metrics.IncCacheRequest("horoscope", "hit")
			return &h, nil
		}
	}
	metrics.IncCacheRequest("horoscope", "miss")
	return c.Refresh(ctx)
}

// Refresh fetches from upstream and overwrites the cached value.
func (c *HoroscopeCache) Refresh(ctx context.Context) (*model.Horoscope, error) {
	h, err := c.upstream.Horoscope(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(h); err == nil {
		_ = c.client.Set(ctx, horoscopeKey, data, c.ttl)
	}
	return h, nil
}
