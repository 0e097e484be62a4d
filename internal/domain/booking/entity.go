package booking

import "time"

// Slot は半日単位の予約枠を表す
type Slot string

const (
	SlotAM Slot = "AM"
	SlotPM Slot = "PM"
)

// Valid はスロットが有効かを返す
func (s Slot) Valid() bool {
	return s == SlotAM || s == SlotPM
}

// DateLayout は予約日付の表記形式
const DateLayout = "2006-01-02"

// ParseDate は "2006-01-02" 形式の日付文字列を解析する
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// Booking は予約エンティティを表す
// UserName / UserEmail は作成時点のスナップショットであり、
// その後のプロフィール変更で書き換わることはない
type Booking struct {
	ID          string
	SeatID      string
	UserID      string
	UserName    string
	UserEmail   string
	Date        time.Time // 日付のみ（時刻は持たない）
	Slot        Slot
	CreatedAt   time.Time
	CancelledAt *time.Time
}

// NewBooking は新しい予約を作成する
func NewBooking(seatID, userID, userName, userEmail string, date time.Time, slot Slot) *Booking {
	return &Booking{
		SeatID:    seatID,
		UserID:    userID,
		UserName:  userName,
		UserEmail: userEmail,
		Date:      date.Truncate(24 * time.Hour),
		Slot:      slot,
		CreatedAt: time.Now(),
	}
}

// IsActive は予約が有効（未キャンセル）かを返す
func (b *Booking) IsActive() bool {
	return b.CancelledAt == nil
}

// Cancel は予約をキャンセルする
// 既にキャンセル済みの場合は何もしない（タイムスタンプを保持）
// 状態が変化した場合に true を返す
func (b *Booking) Cancel() bool {
	if b.CancelledAt != nil {
		return false
	}
	now := time.Now()
	b.CancelledAt = &now
	return true
}

// CancellableBy は指定ユーザーがこの予約をキャンセルできるかを返す
// 予約の所有者本人、または管理者のみがキャンセルできる
func (b *Booking) CancellableBy(userID string, isAdmin bool) bool {
	return b.UserID == userID || isAdmin
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.SeatID == "" {
		return ErrSeatIDRequired
	}
	if b.UserID == "" {
		return ErrUserIDRequired
	}
	if b.Date.IsZero() {
		return ErrInvalidDate
	}
	if !b.Slot.Valid() {
		return ErrInvalidSlot
	}
	return nil
}

// CheckResult は空席確認の結果を表す
type CheckResult struct {
	Bookable bool
	Reason   string
}

// 空席確認で返す理由（ユーザー表示用）
const (
	ReasonSeatNotFound     = "座席が存在しません"
	ReasonBlocked          = "利用停止中です"
	ReasonLongTermReserved = "長期予約されています"
	ReasonSlotTaken        = "この枠は既に予約されています"
)

// BulkResult は一括予約の結果レポートを表す
// Created と Conflicts は呼び出し元が指定した順序を保持する
type BulkResult struct {
	Created      []*Booking
	Conflicts    []string
	CreatedCount int
	FailedCount  int
}
