package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// OccupancyCache は日付ごとの有効予約数のキャッシュを管理する
// 「今日誰が出社しているか」ビューの問い合わせ削減に使う
type OccupancyCache struct {
	client *redis.Client
}

// NewOccupancyCache は新しいOccupancyCacheインスタンスを作成する
func NewOccupancyCache(client *redis.Client) *OccupancyCache {
	return &OccupancyCache{client: client}
}

// GetActiveCount は日付の有効予約数をキャッシュから取得する
func (c *OccupancyCache) GetActiveCount(ctx context.Context, date string) (int, error) {
	val, err := c.client.Get(ctx, c.countKey(date)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetActiveCount は日付の有効予約数をキャッシュに保存する
func (c *OccupancyCache) SetActiveCount(ctx context.Context, date string, count int, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.countKey(date), count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は日付のキャッシュを無効化する
// 予約の作成・キャンセルのたびに呼ばれる
func (c *OccupancyCache) Invalidate(ctx context.Context, date string) error {
	if err := c.client.Del(ctx, c.countKey(date)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *OccupancyCache) countKey(date string) string {
	return fmt.Sprintf("occupancy:%s", date)
}
