package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	appmw "github.com/sanosuguru/go-hotdesk-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/user"
)

type UserHandler struct {
	service UserServiceInterface
}

func NewUserHandler(s UserServiceInterface) *UserHandler {
	return &UserHandler{service: s}
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=employee admin"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role),
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

// Me は認証済みユーザー自身の情報を返す
// 初回アクセス時にユーザーを登録する
func (h *UserHandler) Me(c echo.Context) error {
	identity := appmw.CurrentIdentity(c)
	u, err := h.service.EnsureUser(c.Request().Context(), identity)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// List は全ユーザーを返す（管理者）
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	return c.JSON(http.StatusOK, resp)
}

// SetRole はユーザーのロールを変更する（管理者）
func (h *UserHandler) SetRole(c echo.Context) error {
	var req SetRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	u, err := h.service.SetRole(c.Request().Context(), c.Param("id"), user.Role(req.Role))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		if errors.Is(err, user.ErrInvalidRole) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}
