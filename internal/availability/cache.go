package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coachsite/booking-widget/internal/calendar"
	"github.com/coachsite/booking-widget/internal/observability/metrics"
	"github.com/coachsite/booking-widget/pkg/logging"
)

// DefaultCacheTTL keeps cached availability short-lived; slots taken by
// other clients should stop being offered quickly.
const DefaultCacheTTL = 2 * time.Minute

// CachedProvider is a Redis read-through cache in front of another
// Provider. Cache trouble degrades to a direct query, never to an error
// the user sees.
type CachedProvider struct {
	next    Provider
	redis   *redis.Client
	ttl     time.Duration
	logger  *logging.Logger
	metrics *metrics.WidgetMetrics
}

// NewCachedProvider wraps next with a Redis cache.
func NewCachedProvider(next Provider, rdb *redis.Client, ttl time.Duration, logger *logging.Logger, m *metrics.WidgetMetrics) *CachedProvider {
	if next == nil {
		panic("availability: next provider required")
	}
	if rdb == nil {
		panic("availability: redis client required")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedProvider{
		next:    next,
		redis:   rdb,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

// Slots serves from the cache when possible, falling through to the
// wrapped provider and populating the cache on a miss.
func (p *CachedProvider) Slots(ctx context.Context, day calendar.Day) ([]Slot, error) {
	if !day.Bookable {
		return []Slot{}, nil
	}

	key := cacheKey(day.ISODate())
	data, err := p.redis.Get(ctx, key).Bytes()
	if err == nil {
		var slots []Slot
		if err := json.Unmarshal(data, &slots); err == nil {
			p.metrics.ObserveAvailability("cache", "hit")
			return slots, nil
		}
		p.logger.Warn("availability cache entry corrupt, refetching", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		p.logger.Warn("availability cache read failed", "key", key, "error", err)
	}
	p.metrics.ObserveAvailability("cache", "miss")

	slots, err := p.next.Slots(ctx, day)
	if err != nil {
		p.metrics.ObserveAvailability("backend", "error")
		return nil, err
	}
	p.metrics.ObserveAvailability("backend", "ok")

	if data, err := json.Marshal(slots); err == nil {
		if err := p.redis.Set(ctx, key, data, p.ttl).Err(); err != nil {
			p.logger.Warn("availability cache write failed", "key", key, "error", err)
		}
	}
	return slots, nil
}

// Invalidate drops the cached slots for a date, used after a confirmed
// booking so the taken slot disappears promptly.
func (p *CachedProvider) Invalidate(ctx context.Context, isoDate string) error {
	if err := p.redis.Del(ctx, cacheKey(isoDate)).Err(); err != nil {
		return fmt.Errorf("availability: invalidate %s: %w", isoDate, err)
	}
	return nil
}

func cacheKey(isoDate string) string {
	return fmt.Sprintf("availability:%s", isoDate)
}
