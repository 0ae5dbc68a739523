package service

import (
	"context"
	"errors"
	"time"

	"smarthub/internal/metrics"
	"smarthub/internal/schedule"
	"smarthub/internal/store"

	"go.uber.org/zap"
)

const sunsetCachePrefix = "smarthub:sunset:"

// CachedSunsetSource 按日期缓存日落时间，缓存故障时直接回源
type CachedSunsetSource struct {
	kv      store.KV
	next    schedule.SunsetSource
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.Metrics
}

var _ schedule.SunsetSource = (*CachedSunsetSource)(nil)

func NewCachedSunsetSource(kv store.KV, next schedule.SunsetSource, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *CachedSunsetSource {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedSunsetSource{
		kv:      kv,
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
		metrics: m,
	}
}

// WithClock replaces the clock that picks the cache date.
func (c *CachedSunsetSource) WithClock(now func() time.Time) *CachedSunsetSource {
	c.now = now
	return c
}

func (c *CachedSunsetSource) Sunset(ctx context.Context) (schedule.TimeOfDay, error) {
	key := sunsetCachePrefix + c.now().Format("2006-01-02")

	raw, err := c.kv.Get(ctx, key)
	switch {
	case err == nil:
		if t, perr := schedule.ParseTimeOfDay(raw); perr == nil {
			c.metrics.ObserveSunsetLookup("cache", nil)
			return t, nil
		}
		c.logger.Warn("Discarding corrupt sunset cache entry", zap.String("key", key), zap.String("value", raw))
	case errors.Is(err, store.ErrMiss):
	default:
		c.metrics.ObserveSunsetLookup("cache", err)
		c.logger.Warn("Sunset cache read failed", zap.String("key", key), zap.Error(err))
	}

	t, err := c.next.Sunset(ctx)
	if err != nil {
		return 0, err
	}

	if err := c.kv.Set(ctx, key, t.String(), c.ttl); err != nil {
		c.logger.Warn("Sunset cache write failed", zap.String("key", key), zap.Error(err))
	}
	return t, nil
}
