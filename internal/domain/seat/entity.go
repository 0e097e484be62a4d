package seat

import "time"

// Type は座席の種別を表す
type Type string

const (
	TypeSolo        Type = "solo"
	TypeTeamCluster Type = "team_cluster"
)

// Seat は座席エンティティを表す
type Seat struct {
	ID                    string
	Name                  string // フロア全体で一意
	Type                  Type
	HasMonitor            bool
	IsBlocked             bool // 管理者による利用停止
	IsLongTermReserved    bool
	LongTermReservedBy    *string
	LongTermReservedUntil *time.Time
	PositionX             int
	PositionY             int
	ClusterID             *string
	Metadata              map[string]string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewSeat は新しい座席を作成する
func NewSeat(name string, seatType Type, hasMonitor bool, x, y int, clusterID *string) *Seat {
	now := time.Now()
	return &Seat{
		Name:       name,
		Type:       seatType,
		HasMonitor: hasMonitor,
		PositionX:  x,
		PositionY:  y,
		ClusterID:  clusterID,
		Metadata:   map[string]string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SetBlocked は座席の利用停止状態を設定する
func (s *Seat) SetBlocked(blocked bool) {
	s.IsBlocked = blocked
	s.UpdatedAt = time.Now()
}

// ReserveLongTerm は座席を長期予約状態にする
// until が nil の場合は無期限の長期予約となる
func (s *Seat) ReserveLongTerm(holder string, until *time.Time) error {
	if holder == "" {
		return ErrHolderRequired
	}
	s.IsLongTermReserved = true
	s.LongTermReservedBy = &holder
	s.LongTermReservedUntil = until
	s.UpdatedAt = time.Now()
	return nil
}

// ReleaseLongTerm は長期予約を解除する
func (s *Seat) ReleaseLongTerm() {
	s.IsLongTermReserved = false
	s.LongTermReservedBy = nil
	s.LongTermReservedUntil = nil
	s.UpdatedAt = time.Now()
}

// LongTermExpired は長期予約の期限が切れているかを返す
func (s *Seat) LongTermExpired(now time.Time) bool {
	return s.IsLongTermReserved && s.LongTermReservedUntil != nil && s.LongTermReservedUntil.Before(now)
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.Name == "" {
		return ErrSeatNameRequired
	}
	if s.Type != TypeSolo && s.Type != TypeTeamCluster {
		return ErrInvalidSeatType
	}
	if s.PositionX < 0 || s.PositionY < 0 {
		return ErrInvalidPosition
	}
	return nil
}
