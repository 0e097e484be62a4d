package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/user"
)

func TestUserService_EnsureUser(t *testing.T) {
	ctx := context.Background()

	t.Run("初回アクセスでemployeeとして登録される", func(t *testing.T) {
		service := NewUserService(newMemUserRepo())

		u, err := service.EnsureUser(ctx, testIdentity)

		require.NoError(t, err)
		assert.Equal(t, testIdentity.UserID, u.ID)
		assert.Equal(t, user.RoleEmployee, u.Role)
	})

	t.Run("再アクセスで名前とメールが更新され役割は保持される", func(t *testing.T) {
		repo := newMemUserRepo()
		service := NewUserService(repo)

		_, err := service.EnsureUser(ctx, testIdentity)
		require.NoError(t, err)
		_, err = service.SetRole(ctx, testIdentity.UserID, user.RoleAdmin)
		require.NoError(t, err)

		renamed := Identity{UserID: testIdentity.UserID, UserName: "山田次郎", UserEmail: "jiro@example.com"}
		u, err := service.EnsureUser(ctx, renamed)

		require.NoError(t, err)
		assert.Equal(t, "山田次郎", u.Name)
		assert.Equal(t, "jiro@example.com", u.Email)
		// 昇格済みの役割が維持される
		assert.Equal(t, user.RoleAdmin, u.Role)
	})

	t.Run("ID未指定はエラー", func(t *testing.T) {
		service := NewUserService(newMemUserRepo())

		_, err := service.EnsureUser(ctx, Identity{UserName: "名無し"})

		assert.ErrorIs(t, err, user.ErrUserIDRequired)
	})
}

func TestUserService_SetRole(t *testing.T) {
	ctx := context.Background()

	t.Run("役割を変更できる", func(t *testing.T) {
		service := NewUserService(newMemUserRepo())
		_, err := service.EnsureUser(ctx, testIdentity)
		require.NoError(t, err)

		u, err := service.SetRole(ctx, testIdentity.UserID, user.RoleAdmin)

		require.NoError(t, err)
		assert.Equal(t, user.RoleAdmin, u.Role)
	})

	t.Run("無効な役割はErrInvalidRole", func(t *testing.T) {
		service := NewUserService(newMemUserRepo())

		_, err := service.SetRole(ctx, testIdentity.UserID, user.Role("superuser"))

		assert.ErrorIs(t, err, user.ErrInvalidRole)
	})

	t.Run("存在しないユーザーはErrUserNotFound", func(t *testing.T) {
		service := NewUserService(newMemUserRepo())

		_, err := service.SetRole(ctx, "no-such-user", user.RoleAdmin)

		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}
