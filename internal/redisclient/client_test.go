package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow(t *testing.T) {
	t.Skip("Integration test - requires redis")

	client, err := NewClient("localhost:6379", "", 0)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	key := "test-" + uuid.New().String()

	for i := 0; i < 3; i++ {
		ok, err := client.Allow(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := client.Allow(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarkEventSeen(t *testing.T) {
	t.Skip("Integration test - requires redis")

	client, err := NewClient("localhost:6379", "", 0)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	id := uuid.New().String()

	first, err := client.MarkEventSeen(ctx, id, time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := client.MarkEventSeen(ctx, id, time.Minute)
	require.NoError(t, err)
	assert.False(t, second)
}
