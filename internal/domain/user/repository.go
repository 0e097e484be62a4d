package user

import "context"

// Repository はユーザーリポジトリのインターフェース
type Repository interface {
	// GetByID はIDからユーザーを取得する
	GetByID(ctx context.Context, id string) (*User, error)

	// Upsert はユーザーを作成または更新する（初回アクセス時の登録に使用）
	// 既存ユーザーの役割は変更しない
	Upsert(ctx context.Context, u *User) error

	// UpdateRole はユーザーの役割を更新する
	UpdateRole(ctx context.Context, id string, role Role) error

	// List は全ユーザーを取得する
	List(ctx context.Context) ([]*User, error)
}
