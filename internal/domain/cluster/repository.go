package cluster

import "context"

// Repository はクラスタリポジトリのインターフェース
type Repository interface {
	// Create は新しいクラスタを作成する
	Create(ctx context.Context, c *Cluster) error

	// GetByID はIDからクラスタを取得する
	GetByID(ctx context.Context, id string) (*Cluster, error)

	// List は全クラスタを取得する
	List(ctx context.Context) ([]*Cluster, error)

	// Update はクラスタを更新する
	Update(ctx context.Context, c *Cluster) error

	// Delete はクラスタを削除する
	Delete(ctx context.Context, id string) error
}
