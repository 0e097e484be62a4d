package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleEmployee.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("manager").Valid())
	assert.False(t, Role("").Valid())
}

func TestRole_IsAdmin(t *testing.T) {
	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleEmployee.IsAdmin())
}

func TestNewUser(t *testing.T) {
	u := NewUser("user-123", "山田太郎", "taro@example.com")

	require.NoError(t, u.Validate())
	assert.Equal(t, "user-123", u.ID)
	// 初回は employee として作成される
	assert.Equal(t, RoleEmployee, u.Role)
}

func TestUser_Validate(t *testing.T) {
	t.Run("ID未指定はエラー", func(t *testing.T) {
		u := NewUser("", "山田太郎", "taro@example.com")
		assert.ErrorIs(t, u.Validate(), ErrUserIDRequired)
	})

	t.Run("無効な役割はエラー", func(t *testing.T) {
		u := NewUser("user-123", "山田太郎", "taro@example.com")
		u.Role = Role("superuser")
		assert.ErrorIs(t, u.Validate(), ErrInvalidRole)
	})
}
