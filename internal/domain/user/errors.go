package user

import "errors"

// User ドメインのエラー定義
var (
	ErrUserNotFound   = errors.New("ユーザーが見つかりません")
	ErrUserIDRequired = errors.New("ユーザーIDは必須です")
	ErrInvalidRole    = errors.New("役割はemployeeまたはadminを指定してください")
)
