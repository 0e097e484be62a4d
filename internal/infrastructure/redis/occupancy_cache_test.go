package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccupancyCache(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	cache := NewOccupancyCache(client)

	t.Run("保存した件数を取得できる", func(t *testing.T) {
		require.NoError(t, cache.SetActiveCount(ctx, "2026-09-15", 42, 10*time.Second))

		count, err := cache.GetActiveCount(ctx, "2026-09-15")
		require.NoError(t, err)
		assert.Equal(t, 42, count)
	})

	t.Run("未保存の日付はErrCacheMiss", func(t *testing.T) {
		_, err := cache.GetActiveCount(ctx, "1999-01-01")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("無効化後はErrCacheMiss", func(t *testing.T) {
		require.NoError(t, cache.SetActiveCount(ctx, "2026-09-16", 7, 10*time.Second))
		require.NoError(t, cache.Invalidate(ctx, "2026-09-16"))

		_, err := cache.GetActiveCount(ctx, "2026-09-16")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("日付ごとに独立したキーを持つ", func(t *testing.T) {
		require.NoError(t, cache.SetActiveCount(ctx, "2026-09-17", 1, 10*time.Second))
		require.NoError(t, cache.SetActiveCount(ctx, "2026-09-18", 2, 10*time.Second))

		count, err := cache.GetActiveCount(ctx, "2026-09-17")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
