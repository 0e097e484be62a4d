package booking

import (
	"context"
	"time"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
//
// ストレージは (seat_id, date, slot) に対して cancelled_at IS NULL な行の
// 部分一意制約を持つ。Insert / InsertBulk はその制約違反を ErrSlotTaken に
// 変換して返す。事前の空席チェックはあくまで最適化であり、
// 同時実行下での正しさはこの制約が保証する
type Repository interface {
	// Insert は予約を1件作成する
	Insert(ctx context.Context, b *Booking) error

	// InsertBulk は複数の予約を1つのトランザクション内で一括作成する
	// 全件成功するか、全件ロールバックされるかのいずれか
	InsertBulk(ctx context.Context, tx transaction.Tx, bookings []*Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// FindActiveBySeatAndDate は座席と日付に対する有効な予約を取得する
	FindActiveBySeatAndDate(ctx context.Context, seatID string, date time.Time) ([]*Booking, error)

	// FindActiveByDate は日付に対する全座席の有効な予約を取得する
	FindActiveByDate(ctx context.Context, date time.Time) ([]*Booking, error)

	// GetByUserID はユーザーの予約一覧を新しい順に取得する
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Booking, error)

	// Update は予約を更新する（キャンセルの永続化に使用）
	Update(ctx context.Context, b *Booking) error

	// DeleteBySeatID は座席に紐づく予約を全て削除する
	// 座席削除の連鎖削除として、座席の削除と同一トランザクションで呼ぶ
	DeleteBySeatID(ctx context.Context, tx transaction.Tx, seatID string) error
}
