package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/redis/go-redis/v9"
)

// ContextCache stores derived contexts by key.
type ContextCache interface {
	Get(ctx context.Context, key string) (domain.LearningContext, bool, error)
	Set(ctx context.Context, key string, lc domain.LearningContext, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CacheKey is the cache key for a learner and optional document scope.
func CacheKey(userID uuid.UUID, documentID *uuid.UUID) string {
	scope := "all"
	if documentID != nil {
		scope = documentID.String()
	}
	return "tutor:context:" + userID.String() + ":" + scope
}

// CachedBuilder serves contexts from a cache and rebuilds them through the
// wrapped builder on a miss. Results may be up to ttl stale. Cache failures
// are logged and bypassed; builder failures are never cached.
type CachedBuilder struct {
	inner  ContextBuilder
	cache  ContextCache
	ttl    time.Duration
	logger *slog.Logger
}

var _ ContextBuilder = (*CachedBuilder)(nil)

// NewCachedBuilder wraps inner with cache. It panics on nil dependencies.
func NewCachedBuilder(inner ContextBuilder, cache ContextCache, ttl time.Duration, log *slog.Logger) *CachedBuilder {
	if inner == nil {
		panic("inner builder cannot be nil")
	}
	if cache == nil {
		panic("cache cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedBuilder{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: log.With(slog.String("component", "context_cache")),
	}
}

// BuildContext implements ContextBuilder.
func (c *CachedBuilder) BuildContext(ctx context.Context, userID uuid.UUID, documentID *uuid.UUID) (domain.LearningContext, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)
	key := CacheKey(userID, documentID)

	lc, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		log.Warn("context cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	case ok:
		log.Debug("context cache hit", slog.String("key", key))
		return lc, nil
	}

	lc, err = c.inner.BuildContext(ctx, userID, documentID)
	if err != nil {
		return domain.LearningContext{}, err
	}

	if err := c.cache.Set(ctx, key, lc, c.ttl); err != nil {
		log.Warn("context cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return lc, nil
}

// Invalidate drops the cached contexts for userID, both the unscoped one
// and the one scoped to documentID when given.
func (c *CachedBuilder) Invalidate(ctx context.Context, userID uuid.UUID, documentID *uuid.UUID) {
	keys := []string{CacheKey(userID, nil)}
	if documentID != nil {
		keys = append(keys, CacheKey(userID, documentID))
	}
	for _, key := range keys {
		if err := c.cache.Delete(ctx, key); err != nil {
			logger.FromContextOrDefault(ctx, c.logger).Warn("context cache delete failed",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}

// MemoryCache is an in-process ContextCache backed by go-cache.
type MemoryCache struct {
	items *gocache.Cache
}

var _ ContextCache = (*MemoryCache)(nil)

// NewMemoryCache creates a MemoryCache whose entries default to ttl and are
// swept every cleanup interval.
func NewMemoryCache(ttl, cleanup time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(ttl, cleanup)}
}

// Get implements ContextCache.
func (m *MemoryCache) Get(_ context.Context, key string) (domain.LearningContext, bool, error) {
	v, found := m.items.Get(key)
	if !found {
		return domain.LearningContext{}, false, nil
	}
	lc, ok := v.(domain.LearningContext)
	if !ok {
		m.items.Delete(key)
		return domain.LearningContext{}, false, nil
	}
	return lc, true, nil
}

// Set implements ContextCache. A zero ttl uses the cache default.
func (m *MemoryCache) Set(_ context.Context, key string, lc domain.LearningContext, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.items.Set(key, lc, ttl)
	return nil
}

// Delete implements ContextCache.
func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

// RedisCache is a ContextCache shared across instances. Values are JSON.
type RedisCache struct {
	client redis.Cmdable
}

var _ ContextCache = (*RedisCache)(nil)

// NewRedisCache creates a RedisCache over client. It panics if client is nil.
func NewRedisCache(client redis.Cmdable) *RedisCache {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &RedisCache{client: client}
}

// Get implements ContextCache.
func (r *RedisCache) Get(ctx context.Context, key string) (domain.LearningContext, bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.LearningContext{}, false, nil
	}
	if err != nil {
		return domain.LearningContext{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var lc domain.LearningContext
	if err := json.Unmarshal(raw, &lc); err != nil {
		return domain.LearningContext{}, false, fmt.Errorf("decode cached context: %w", err)
	}
	return lc, true, nil
}

// Set implements ContextCache. A zero ttl stores without expiry.
func (r *RedisCache) Set(ctx context.Context, key string, lc domain.LearningContext, ttl time.Duration) error {
	raw, err := json.Marshal(lc)
	if err != nil {
		return fmt.Errorf("encode context: %w", err)
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete implements ContextCache.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
