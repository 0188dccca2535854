package redisconn

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestConnect_Errors(t *testing.T) {
	t.Parallel()

	_, err := Connect(context.Background(), "not a url")
	assert.ErrorContains(t, err, "failed to parse Redis URL")

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = Connect(context.Background(), "redis://"+addr)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
