package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockLongTermReleaser はLongTermReleaserのモック
type MockLongTermReleaser struct {
	mock.Mock
}

func (m *MockLongTermReleaser) ReleaseExpiredLongTerm(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func TestNewLongTermExpirer(t *testing.T) {
	mockService := new(MockLongTermReleaser)
	interval := 10 * time.Minute

	expirer := NewLongTermExpirer(mockService, interval)

	assert.NotNil(t, expirer)
	assert.Equal(t, interval, expirer.interval)
	assert.NotNil(t, expirer.stopCh)
	assert.NotNil(t, expirer.doneCh)
}

func TestLongTermExpirer_Sweep(t *testing.T) {
	t.Run("正常にスイープが実行される", func(t *testing.T) {
		mockService := new(MockLongTermReleaser)
		mockService.On("ReleaseExpiredLongTerm", mock.Anything, mock.AnythingOfType("time.Time")).Return(3, nil)

		expirer := &LongTermExpirer{
			seatService: mockService,
			interval:    10 * time.Minute,
			stopCh:      make(chan struct{}),
			doneCh:      make(chan struct{}),
		}

		expirer.sweep(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("対象がない場合も正常に動作する", func(t *testing.T) {
		mockService := new(MockLongTermReleaser)
		mockService.On("ReleaseExpiredLongTerm", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, nil)

		expirer := &LongTermExpirer{
			seatService: mockService,
			interval:    10 * time.Minute,
			stopCh:      make(chan struct{}),
			doneCh:      make(chan struct{}),
		}

		expirer.sweep(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("エラーが発生しても継続する", func(t *testing.T) {
		mockService := new(MockLongTermReleaser)
		mockService.On("ReleaseExpiredLongTerm", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, assert.AnError)

		expirer := &LongTermExpirer{
			seatService: mockService,
			interval:    10 * time.Minute,
			stopCh:      make(chan struct{}),
			doneCh:      make(chan struct{}),
		}

		// パニックしないことを確認
		expirer.sweep(context.Background())

		mockService.AssertExpectations(t)
	})
}

func TestLongTermExpirer_StartStop(t *testing.T) {
	t.Run("開始と停止が正常に動作する", func(t *testing.T) {
		mockService := new(MockLongTermReleaser)
		mockService.On("ReleaseExpiredLongTerm", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, nil).Maybe()

		expirer := NewLongTermExpirer(mockService, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go expirer.Start(ctx)

		time.Sleep(120 * time.Millisecond)

		expirer.Stop()

		select {
		case <-expirer.doneCh:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("expirer did not stop in time")
		}
	})

	t.Run("コンテキストキャンセルで停止する", func(t *testing.T) {
		mockService := new(MockLongTermReleaser)
		mockService.On("ReleaseExpiredLongTerm", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, nil).Maybe()

		expirer := NewLongTermExpirer(mockService, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			expirer.Start(ctx)
			close(done)
		}()

		time.Sleep(80 * time.Millisecond)
		cancel()

		select {
		case <-done:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("expirer did not stop after context cancel")
		}
	})
}
