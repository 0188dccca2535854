package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBuilder counts calls and returns a fixed context.
type countingBuilder struct {
	lc    domain.LearningContext
	err   error
	calls int
}

func (b *countingBuilder) BuildContext(context.Context, uuid.UUID, *uuid.UUID) (domain.LearningContext, error) {
	b.calls++
	return b.lc, b.err
}

// brokenCache fails every operation.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (domain.LearningContext, bool, error) {
	return domain.LearningContext{}, false, errors.New("cache down")
}

func (brokenCache) Set(context.Context, string, domain.LearningContext, time.Duration) error {
	return errors.New("cache down")
}

func (brokenCache) Delete(context.Context, string) error { return errors.New("cache down") }

func sampleContext() domain.LearningContext {
	last := time.Date(2026, 4, 4, 9, 30, 0, 0, time.UTC)
	lc := domain.DefaultLearningContext()
	lc.PreferredLearningStyle = domain.StyleAuditory
	lc.MasteryLevel = domain.MasteryIntermediate
	lc.Weaknesses = []string{domain.TagConceptDifficulty}
	lc.TotalConversations = 3
	lc.AverageSessionDurationMinutes = 7
	lc.LastSessionDate = &last
	return lc
}

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestCachedBuilder(t *testing.T) {
	t.Parallel()

	caches := map[string]func(t *testing.T) ContextCache{
		"memory": func(*testing.T) ContextCache { return NewMemoryCache(time.Minute, time.Minute) },
		"redis": func(t *testing.T) ContextCache {
			c, _ := newRedisCache(t)
			return c
		},
	}

	for name, newCache := range caches {
		name := name
		newCache := newCache
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			inner := &countingBuilder{lc: sampleContext()}
			cb := NewCachedBuilder(inner, newCache(t), time.Minute, nil)
			userID, docID := uuid.New(), uuid.New()

			first, err := cb.BuildContext(ctx, userID, &docID)
			require.NoError(t, err)
			second, err := cb.BuildContext(ctx, userID, &docID)
			require.NoError(t, err)
			assert.Equal(t, 1, inner.calls)
			assert.Equal(t, first, second)
			assert.Equal(t, sampleContext(), second)

			_, err = cb.BuildContext(ctx, userID, nil)
			require.NoError(t, err)
			assert.Equal(t, 2, inner.calls, "document scope is part of the key")

			cb.Invalidate(ctx, userID, &docID)
			_, err = cb.BuildContext(ctx, userID, &docID)
			require.NoError(t, err)
			assert.Equal(t, 3, inner.calls)
		})
	}
}

func TestCachedBuilder_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := &countingBuilder{err: ErrContextUnavailable}
	cb := NewCachedBuilder(inner, NewMemoryCache(time.Minute, time.Minute), time.Minute, nil)

	_, err := cb.BuildContext(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrContextUnavailable)
	_, err = cb.BuildContext(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrContextUnavailable)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedBuilder_BypassesBrokenCache(t *testing.T) {
	t.Parallel()
	inner := &countingBuilder{lc: sampleContext()}
	cb := NewCachedBuilder(inner, brokenCache{}, time.Minute, nil)

	lc, err := cb.BuildContext(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, sampleContext(), lc)
	cb.Invalidate(context.Background(), uuid.New(), nil)
}

func TestRedisCache_TTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rc, mr := newRedisCache(t)

	require.NoError(t, rc.Set(ctx, "k", sampleContext(), 30*time.Second))
	assert.Equal(t, 30*time.Second, mr.TTL("k"))

	mr.FastForward(31 * time.Second)
	_, ok, err := rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mr.Set("bad", "{not json"))
	_, _, err = rc.Get(ctx, "bad")
	assert.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	t.Parallel()
	userID := uuid.MustParse("6f1c1d3e-2a5b-4c7d-8e9f-0a1b2c3d4e5f")
	docID := uuid.MustParse("00000000-0000-0000-0000-000000000042")

	assert.Equal(t, "tutor:context:6f1c1d3e-2a5b-4c7d-8e9f-0a1b2c3d4e5f:all", CacheKey(userID, nil))
	assert.Equal(t, "tutor:context:6f1c1d3e-2a5b-4c7d-8e9f-0a1b2c3d4e5f:00000000-0000-0000-0000-000000000042", CacheKey(userID, &docID))
}
