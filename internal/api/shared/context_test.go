package shared

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWithTraceID(t *testing.T) {
	t.Parallel()

	ctx := WithTraceID(context.Background(), "abc123")
	assert.Equal(t, "abc123", GetTraceID(ctx))

	for _, bad := range []string{"", "has space", strings.Repeat("a", 65)} {
		got := GetTraceID(WithTraceID(context.Background(), bad))
		assert.Len(t, got, 32, "input %q", bad)
		assert.NotEqual(t, bad, got)
	}

	assert.Empty(t, GetTraceID(context.Background()))
	assert.NotEqual(t, NewTraceID(), NewTraceID())
}

func TestUserID(t *testing.T) {
	t.Parallel()

	_, ok := GetUserID(context.Background())
	assert.False(t, ok)

	_, ok = GetUserID(WithUserID(context.Background(), uuid.Nil))
	assert.False(t, ok)

	id := uuid.New()
	got, ok := GetUserID(WithUserID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
