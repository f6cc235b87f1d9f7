package service

import (
	"context"
	"log/slog"
	"time"

	"zorgsites/internal/platform/redis"
	"zorgsites/internal/registrar"
)

const availabilityCacheTTL = 5 * time.Minute

// RedisAvailabilityCache caches availability verdicts in Redis for a short
// window. Verdicts go stale the moment anyone registers a domain, so the TTL
// stays small and the pipeline re-checks before purchase regardless.
type RedisAvailabilityCache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisAvailabilityCache(client *redis.Client, logger *slog.Logger) *RedisAvailabilityCache {
	if client == nil {
		return nil
	}
	return &RedisAvailabilityCache{client: client, logger: logger}
}

func cacheKey(domain string) string {
	return "domains:availability:" + domain
}

func (c *RedisAvailabilityCache) Get(ctx context.Context, domain string) (registrar.AvailabilityStatus, bool) {
	if c == nil {
		return registrar.StatusUnknown, false
	}
	val, err := c.client.Get(ctx, cacheKey(domain)).Result()
	if err != nil {
		return registrar.StatusUnknown, false
	}
	return registrar.AvailabilityStatus(val), true
}

func (c *RedisAvailabilityCache) Set(ctx context.Context, domain string, status registrar.AvailabilityStatus) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(domain), string(status), availabilityCacheTTL).Err(); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "failed to cache availability verdict",
			"domain", domain,
			"error", err,
		)
	}
}
