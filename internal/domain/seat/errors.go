package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound     = errors.New("座席が見つかりません")
	ErrSeatNameTaken    = errors.New("同じ名前の座席が既に存在します")
	ErrSeatNameRequired = errors.New("座席名は必須です")
	ErrInvalidSeatType  = errors.New("座席種別が不正です")
	ErrInvalidPosition  = errors.New("座席の位置が不正です")
	ErrHolderRequired   = errors.New("長期予約の保持者は必須です")
	ErrPositionOccupied = errors.New("クラスタ内の同じ位置に既に座席があります")
)
