package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound      = errors.New("予約が見つかりません")
	ErrSlotTaken            = errors.New("この枠は既に予約されています")
	ErrSeatBlocked          = errors.New("座席は利用停止中です")
	ErrSeatLongTermReserved = errors.New("座席は長期予約されています")
	ErrForbidden            = errors.New("この予約をキャンセルする権限がありません")
	ErrNoBookingsCreated    = errors.New("予約を1件も作成できませんでした")
	ErrSeatIDRequired       = errors.New("座席IDは必須です")
	ErrUserIDRequired       = errors.New("ユーザーIDは必須です")
	ErrInvalidSlot          = errors.New("予約枠はAMまたはPMを指定してください")
	ErrInvalidDate          = errors.New("日付の形式が不正です")
)
