package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/pkg/logger"
)

// LongTermReleaser は期限切れの長期予約を解除するインターフェース
type LongTermReleaser interface {
	ReleaseExpiredLongTerm(ctx context.Context, now time.Time) (int, error)
}

// LongTermExpirer は期限の過ぎた長期予約席を定期的に解放するワーカー
type LongTermExpirer struct {
	seatService LongTermReleaser
	interval    time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// NewLongTermExpirer は新しいワーカーを作成
func NewLongTermExpirer(ss LongTermReleaser, interval time.Duration) *LongTermExpirer {
	return &LongTermExpirer{
		seatService: ss,
		interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start はワーカーを開始
func (w *LongTermExpirer) Start(ctx context.Context) {
	logger.Info("長期予約期限監視ワーカー開始",
		zap.Duration("interval", w.interval),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("長期予約期限監視ワーカー停止（コンテキストキャンセル）")
			return
		case <-w.stopCh:
			logger.Info("長期予約期限監視ワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Stop はワーカーを停止
func (w *LongTermExpirer) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

// sweep は期限切れの長期予約を解放
func (w *LongTermExpirer) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限切れ長期予約のスイープ開始")

	count, err := w.seatService.ReleaseExpiredLongTerm(ctx, time.Now())
	if err != nil {
		log.Error("期限切れ長期予約のスイープ失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("期限切れ長期予約を解放", zap.Int("count", count))
	} else {
		log.Debug("期限切れ長期予約なし")
	}
}
