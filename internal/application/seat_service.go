package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/cluster"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/transaction"
)

// SeatService は座席台帳の管理操作を担う
type SeatService struct {
	txManager   transaction.Manager
	seatRepo    seat.Repository
	clusterRepo cluster.Repository
	bookingRepo booking.Repository
}

// NewSeatService は新しいSeatServiceを作成する
func NewSeatService(tm transaction.Manager, sr seat.Repository, cr cluster.Repository, br booking.Repository) *SeatService {
	return &SeatService{txManager: tm, seatRepo: sr, clusterRepo: cr, bookingRepo: br}
}

type CreateSeatInput struct {
	Name       string
	Type       seat.Type
	HasMonitor bool
	PositionX  int
	PositionY  int
	ClusterID  *string
	Metadata   map[string]string
}

func (s *SeatService) CreateSeat(ctx context.Context, input CreateSeatInput) (*seat.Seat, error) {
	se := seat.NewSeat(input.Name, input.Type, input.HasMonitor, input.PositionX, input.PositionY, input.ClusterID)
	if input.Metadata != nil {
		se.Metadata = input.Metadata
	}
	if err := se.Validate(); err != nil {
		return nil, err
	}
	if se.ClusterID != nil {
		if err := s.validatePlacement(ctx, *se.ClusterID, se.PositionX, se.PositionY, ""); err != nil {
			return nil, err
		}
	}
	if err := s.seatRepo.Create(ctx, se); err != nil {
		return nil, err
	}
	return se, nil
}

// UpdateSeat は座席を部分更新する
// パッチで指定されたフィールドのみ反映される
func (s *SeatService) UpdateSeat(ctx context.Context, id string, patch seat.Patch) (*seat.Seat, error) {
	se, err := s.seatRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(se)
	if err := se.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if se.ClusterID != nil {
		if err := s.validatePlacement(ctx, *se.ClusterID, se.PositionX, se.PositionY, se.ID); err != nil {
			return nil, err
		}
	}
	if err := s.seatRepo.Update(ctx, se); err != nil {
		return nil, err
	}
	return se, nil
}

// DeleteSeat は座席を削除する
// 座席に紐づく予約は同一トランザクションで連鎖削除される
func (s *SeatService) DeleteSeat(ctx context.Context, id string) error {
	if _, err := s.seatRepo.GetByID(ctx, id); err != nil {
		return err
	}
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.bookingRepo.DeleteBySeatID(ctx, tx, id); err != nil {
		return err
	}
	if err := s.seatRepo.Delete(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}

// SetBlocked は座席の利用停止状態を変更する
func (s *SeatService) SetBlocked(ctx context.Context, id string, blocked bool) (*seat.Seat, error) {
	se, err := s.seatRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	se.SetBlocked(blocked)
	if err := s.seatRepo.Update(ctx, se); err != nil {
		return nil, err
	}
	return se, nil
}

// SetLongTermReservation は座席の長期予約状態を設定・解除する
func (s *SeatService) SetLongTermReservation(ctx context.Context, id string, reserved bool, holder string, until *time.Time) (*seat.Seat, error) {
	se, err := s.seatRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reserved {
		if err := se.ReserveLongTerm(holder, until); err != nil {
			return nil, err
		}
	} else {
		se.ReleaseLongTerm()
	}
	if err := s.seatRepo.Update(ctx, se); err != nil {
		return nil, err
	}
	return se, nil
}

func (s *SeatService) GetSeat(ctx context.Context, id string) (*seat.Seat, error) {
	return s.seatRepo.GetByID(ctx, id)
}

func (s *SeatService) GetSeatByName(ctx context.Context, name string) (*seat.Seat, error) {
	return s.seatRepo.GetByName(ctx, name)
}

func (s *SeatService) ListSeats(ctx context.Context) ([]*seat.Seat, error) {
	return s.seatRepo.List(ctx)
}

// ReleaseExpiredLongTerm は期限切れの長期予約を解除し、解除件数を返す
// バックグラウンドワーカーから定期的に呼ばれる
func (s *SeatService) ReleaseExpiredLongTerm(ctx context.Context, now time.Time) (int, error) {
	seats, err := s.seatRepo.List(ctx)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, se := range seats {
		if !se.LongTermExpired(now) {
			continue
		}
		se.ReleaseLongTerm()
		if err := s.seatRepo.Update(ctx, se); err != nil {
			return released, err
		}
		released++
	}
	return released, nil
}

// validatePlacement はクラスタ内への座席配置を検証する
// クラスタの存在、定員、位置の重複をチェックする（位置はDBの一意インデックスが最終防衛線）
func (s *SeatService) validatePlacement(ctx context.Context, clusterID string, x, y int, excludeSeatID string) error {
	cl, err := s.clusterRepo.GetByID(ctx, clusterID)
	if err != nil {
		return err
	}
	members, err := s.seatRepo.ListByCluster(ctx, clusterID)
	if err != nil {
		return err
	}
	occupied := 0
	for _, m := range members {
		if m.ID == excludeSeatID {
			continue
		}
		occupied++
		if m.PositionX == x && m.PositionY == y {
			return seat.ErrPositionOccupied
		}
	}
	if occupied >= cl.Capacity() {
		return cluster.ErrClusterFull
	}
	return nil
}
