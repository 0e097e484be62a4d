package application

import (
	"context"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/user"
)

// UserService はユーザーと役割の管理を担う
type UserService struct {
	userRepo user.Repository
}

// NewUserService は新しいUserServiceを作成する
func NewUserService(ur user.Repository) *UserService {
	return &UserService{userRepo: ur}
}

// EnsureUser は初回アクセス時にユーザーを employee として登録する
// 既存ユーザーの場合は名前・メールのスナップショットを更新し、役割は保持する
func (s *UserService) EnsureUser(ctx context.Context, id Identity) (*user.User, error) {
	u := user.NewUser(id.UserID, id.UserName, id.UserEmail)
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Upsert(ctx, u); err != nil {
		return nil, err
	}
	// Upsert は既存の役割を保持するため、保存後の状態を読み直す
	return s.userRepo.GetByID(ctx, id.UserID)
}

// SetRole はユーザーの役割を変更する（管理者操作）
func (s *UserService) SetRole(ctx context.Context, id string, role user.Role) (*user.User, error) {
	if !role.Valid() {
		return nil, user.ErrInvalidRole
	}
	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*user.User, error) {
	return s.userRepo.List(ctx)
}
