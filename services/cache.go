package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/famillio/household-api/models"

	"github.com/redis/go-redis/v9"
)

// DashboardCacheTTL bounds how stale a served summary can be. Writes do not
// invalidate; callers accept staleness up to this window.
const DashboardCacheTTL = 5 * time.Minute

// SummaryCache is the injected dashboard result cache. Implementations must
// be safe for concurrent use.
type SummaryCache interface {
	Get(ctx context.Context, key string) (*models.MonthlySummary, bool)
	Set(ctx context.Context, key string, summary *models.MonthlySummary) error
	Invalidate(ctx context.Context, key string) error
}

// SummaryCacheKey combines household, period and budget selector into the
// cache key. budgetID "" means the household-wide view.
func SummaryCacheKey(householdID, month, budgetID string) string {
	if budgetID == "" {
		budgetID = "all"
	}
	return fmt.Sprintf("dashboard:%s:%s:%s", householdID, month, budgetID)
}

// MemoryCache is a mutex-guarded map with per-entry expiry. The keyspace is
// household x month x budget, small enough that no eviction beyond expiry is
// needed.
type MemoryCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryCacheItem
	now   func() time.Time
}

type memoryCacheItem struct {
	summary   *models.MonthlySummary
	expiresAt time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:   ttl,
		items: make(map[string]memoryCacheItem),
		now:   time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*models.MonthlySummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.now().After(item.expiresAt) {
		delete(c.items, key)
		return nil, false
	}
	return item.summary, true
}

func (c *MemoryCache) Set(_ context.Context, key string, summary *models.MonthlySummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = memoryCacheItem{
		summary:   summary,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// RedisCache stores summaries as JSON with a SETEX-style TTL so the window
// survives process restarts and is shared between instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.MonthlySummary, bool) {
	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}

	var summary models.MonthlySummary
	if err := json.Unmarshal([]byte(cached), &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

func (c *RedisCache) Set(ctx context.Context, key string, summary *models.MonthlySummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.SetEx(ctx, key, data, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
