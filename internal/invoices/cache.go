package invoices

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
)

const listGenerationName = "invoices"

// ListCache stores list pages keyed by filter and cache generation.
// Invalidate orphans every stored page at once.
type ListCache interface {
	Key(ctx context.Context, params ListParams) (string, error)
	Load(ctx context.Context, key string) (*ListResult, bool)
	Store(ctx context.Context, key string, result *ListResult)
	Invalidate(ctx context.Context)
}

type cacheStore interface {
	Get(context.Context, string) (string, error)
	Set(context.Context, string, any, time.Duration) error
	CacheKey(parts ...string) string
	Generation(context.Context, string) (int64, error)
	BumpGeneration(context.Context, string) (int64, error)
}

type redisListCache struct {
	store cacheStore
	ttl   time.Duration
	logg  *logger.Logger
}

// NewRedisListCache builds a generation-invalidated list cache.
func NewRedisListCache(store cacheStore, ttl time.Duration, logg *logger.Logger) ListCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisListCache{store: store, ttl: ttl, logg: logg}
}

func (c *redisListCache) Key(ctx context.Context, params ListParams) (string, error) {
	gen, err := c.store.Generation(ctx, listGenerationName)
	if err != nil {
		return "", err
	}
	scope := "all"
	if !params.Scope.All {
		scope = params.Scope.UserID.String()
	}
	fingerprint := strings.Join([]string{
		scope,
		fmt.Sprint(params.Limit),
		params.Cursor,
		strings.ToLower(strings.TrimSpace(params.Search)),
		strings.ToLower(strings.TrimSpace(params.Status)),
	}, "|")
	sum := sha256.Sum256([]byte(fingerprint))
	return c.store.CacheKey("invoices", fmt.Sprintf("g%d", gen), hex.EncodeToString(sum[:16])), nil
}

func (c *redisListCache) Load(ctx context.Context, key string) (*ListResult, bool) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.logg.Warn(ctx, fmt.Sprintf("invoice list cache read failed: %v", err))
		}
		return nil, false
	}
	var result ListResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.logg.Warn(ctx, fmt.Sprintf("invoice list cache entry corrupt: %v", err))
		return nil, false
	}
	return &result, true
}

func (c *redisListCache) Store(ctx context.Context, key string, result *ListResult) {
	if result == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		c.logg.Warn(ctx, fmt.Sprintf("invoice list cache encode failed: %v", err))
		return
	}
	if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
		c.logg.Warn(ctx, fmt.Sprintf("invoice list cache write failed: %v", err))
	}
}

func (c *redisListCache) Invalidate(ctx context.Context) {
	if _, err := c.store.BumpGeneration(ctx, listGenerationName); err != nil {
		c.logg.Error(ctx, "invoice list cache invalidation failed", err)
	}
}

// NoopListCache disables list caching.
type NoopListCache struct{}

func (NoopListCache) Key(context.Context, ListParams) (string, error) { return "", nil }
func (NoopListCache) Load(context.Context, string) (*ListResult, bool) { return nil, false }
func (NoopListCache) Store(context.Context, string, *ListResult) {}
func (NoopListCache) Invalidate(context.Context) {}
