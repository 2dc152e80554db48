package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/envutil"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/logger"
)

// ReportCache is a best-effort read-through cache for report content.
// Misses and cache faults are both "not cached"; the artifact store stays
// the source of truth.
type ReportCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, content string)
	Close() error
}

type reportCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewReportCache fails when REDIS_ADDR is unset; callers treat the cache as
// optional and run without one.
func NewReportCache(log *logger.Logger) (ReportCache, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &reportCache{
		log: log.With("service", "ReportCache"),
		rdb: rdb,
		ttl: envutil.Duration("REPORT_CACHE_TTL", 15*time.Minute),
	}, nil
}

func (c *reportCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.rdb.Get(ctx, cacheKey(key)).Result()
	if err == goredis.Nil {
		return "", false
	}
	if err != nil {
		c.log.Warn("Report cache read failed", "key", key, "error", err)
		return "", false
	}
	return val, true
}

func (c *reportCache) Set(ctx context.Context, key, content string) {
	if err := c.rdb.Set(ctx, cacheKey(key), content, c.ttl).Err(); err != nil {
		c.log.Warn("Report cache write failed", "key", key, "error", err)
	}
}

func (c *reportCache) Close() error {
	return c.rdb.Close()
}

func cacheKey(key string) string {
	return "report:" + key
}
