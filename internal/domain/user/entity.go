package user

import "time"

// Role はユーザーの役割を表す
// ユーザーは常にいずれか1つの役割を持ち、初回アクセス時は employee となる
type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Valid は役割が有効かを返す
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleAdmin
}

// IsAdmin は管理者かを返す
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User はユーザーエンティティを表す
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser は新しいユーザーを employee として作成する
func NewUser(id, name, email string) *User {
	now := time.Now()
	return &User{
		ID:        id,
		Name:      name,
		Email:     email,
		Role:      RoleEmployee,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate はユーザーの検証を行う
func (u *User) Validate() error {
	if u.ID == "" {
		return ErrUserIDRequired
	}
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}
