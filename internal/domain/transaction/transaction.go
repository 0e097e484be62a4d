package transaction

import "context"

// Tx はトランザクションを表すインターフェース
// ドメイン層・アプリケーション層がインフラ層（sqlx等）に依存しないための抽象化
type Tx interface {
	// Commit はトランザクションをコミットする
	Commit() error
	// Rollback はトランザクションをロールバックする
	Rollback() error
}

// Manager はトランザクションの開始を担うインターフェース
type Manager interface {
	// Begin は新しいトランザクションを開始する
	Begin(ctx context.Context) (Tx, error)
}
