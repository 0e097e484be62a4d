package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/application"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/user"
)

// コンテキストに格納するキー
const (
	ContextUserID    = "user_id"
	ContextUserName  = "user_name"
	ContextUserEmail = "user_email"
	ContextRole      = "role"
)

// JWTIdentity はBearerトークンを検証し、利用者情報をコンテキストに載せるミドルウェア
// トークンの発行は外部IDプロバイダの責務であり、ここでは検証と取り出しのみ行う
// 役割クレームが無い場合は employee として扱う
func JWTIdentity(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Bearerトークンが必要です")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "トークンが無効です")
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "クレームが不正です")
			}

			c.Set(ContextUserID, stringClaim(claims, "sub"))
			c.Set(ContextUserName, stringClaim(claims, "name"))
			c.Set(ContextUserEmail, stringClaim(claims, "email"))

			role := user.Role(stringClaim(claims, "role"))
			if !role.Valid() {
				role = user.RoleEmployee
			}
			c.Set(ContextRole, role)

			return next(c)
		}
	}
}

// RequireAdmin は管理者のみ通すミドルウェア
// JWTIdentity の後段で使用する
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentRole(c).IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "管理者権限が必要です")
			}
			return next(c)
		}
	}
}

// CurrentIdentity はコンテキストから予約作成者情報を取り出す
func CurrentIdentity(c echo.Context) application.Identity {
	return application.Identity{
		UserID:    stringValue(c, ContextUserID),
		UserName:  stringValue(c, ContextUserName),
		UserEmail: stringValue(c, ContextUserEmail),
	}
}

// CurrentRole はコンテキストから役割を取り出す
func CurrentRole(c echo.Context) user.Role {
	if role, ok := c.Get(ContextRole).(user.Role); ok {
		return role
	}
	return user.RoleEmployee
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func stringValue(c echo.Context, key string) string {
	if v, ok := c.Get(key).(string); ok {
		return v
	}
	return ""
}
