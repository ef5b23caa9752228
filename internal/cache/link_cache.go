package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"pxv-pay/internal/model"

	"github.com/VictoriaMetrics/metrics"
	"github.com/redis/go-redis/v9"
)

var (
	linkCacheHitCounter   = metrics.GetOrCreateCounter(`link_cache_total{result="hit"}`)
	linkCacheMissCounter  = metrics.GetOrCreateCounter(`link_cache_total{result="miss"}`)
	linkCacheErrorCounter = metrics.GetOrCreateCounter(`link_cache_total{result="error"}`)
)

// LinkSource loads checkout links from the system of record.
type LinkSource interface {
	SelectBySlug(ctx context.Context, slug string) (*model.CheckoutLink, error)
}

// LinkCache is a read-through cache of checkout links keyed by slug. Redis
// failures fall back to the source and are only logged.
type LinkCache struct {
	client *redis.Client
	source LinkSource
	ttl    time.Duration
	logger *slog.Logger
}

func NewLinkCache(client *redis.Client, source LinkSource, ttl time.Duration, logger *slog.Logger) *LinkCache {
	return &LinkCache{
		client: client,
		source: source,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *LinkCache) getKey(slug string) string {
	return fmt.Sprintf("checkout:link:%s", slug)
}

func (c *LinkCache) SelectBySlug(ctx context.Context, slug string) (*model.CheckoutLink, error) {
	key := c.getKey(slug)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var link model.CheckoutLink
		if err := json.Unmarshal(data, &link); err == nil {
			linkCacheHitCounter.Inc()
			return &link, nil
		}
		c.logger.WarnContext(ctx, "Discarding unreadable cached link", "slug", slug)
	case err == redis.Nil:
		linkCacheMissCounter.Inc()
	default:
		linkCacheErrorCounter.Inc()
		c.logger.WarnContext(ctx, "Link cache read failed", "slug", slug, "error", err)
	}

	link, err := c.source.SelectBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(link); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			linkCacheErrorCounter.Inc()
			c.logger.WarnContext(ctx, "Link cache write failed", "slug", slug, "error", err)
		}
	}
	return link, nil
}

// Invalidate drops the cached entry for slug.
func (c *LinkCache) Invalidate(ctx context.Context, slug string) {
	if err := c.client.Del(ctx, c.getKey(slug)).Err(); err != nil {
		linkCacheErrorCounter.Inc()
		c.logger.WarnContext(ctx, "Link cache invalidation failed", "slug", slug, "error", err)
	}
}
