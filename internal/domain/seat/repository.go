package seat

import (
	"context"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/transaction"
)

// Repository は座席リポジトリのインターフェース
type Repository interface {
	// Create は新しい座席を作成する
	// 名前が重複している場合は ErrSeatNameTaken を返す
	Create(ctx context.Context, seat *Seat) error

	// GetByID はIDから座席を取得する
	GetByID(ctx context.Context, id string) (*Seat, error)

	// GetByName は名前から座席を取得する
	GetByName(ctx context.Context, name string) (*Seat, error)

	// List は全座席を取得する
	List(ctx context.Context) ([]*Seat, error)

	// ListByCluster はクラスタに属する座席を取得する
	ListByCluster(ctx context.Context, clusterID string) ([]*Seat, error)

	// Update は座席を更新する
	Update(ctx context.Context, seat *Seat) error

	// Delete は座席を削除する（トランザクション必須、予約の連鎖削除と同一トランザクションで行う）
	Delete(ctx context.Context, tx transaction.Tx, id string) error
}
