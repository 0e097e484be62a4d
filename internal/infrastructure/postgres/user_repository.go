package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/user"
)

type userRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *userRow) toEntity() *user.User {
	return &user.User{
		ID: r.ID, Name: r.Name, Email: r.Email,
		Role: user.Role(r.Role), CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type UserRepository struct{ db *sqlx.DB }

func NewUserRepository(db *sqlx.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var row userRow
	query := `SELECT id, name, email, role, created_at, updated_at FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("ユーザー取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// Upsert は初回アクセス時のユーザー登録に使用する
// 既存ユーザーの場合は名前とメールのみ更新し、役割は保持する
func (r *UserRepository) Upsert(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (id, name, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, string(u.Role), u.CreatedAt, u.UpdatedAt,
	); err != nil {
		return fmt.Errorf("ユーザー登録に失敗: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role user.Role) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`, string(role), id)
	if err != nil {
		return fmt.Errorf("役割更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name, email, role, created_at, updated_at FROM users ORDER BY name`); err != nil {
		return nil, fmt.Errorf("ユーザー一覧取得に失敗: %w", err)
	}
	users := make([]*user.User, len(rows))
	for i := range rows {
		users[i] = rows[i].toEntity()
	}
	return users, nil
}

var _ user.Repository = (*UserRepository)(nil)
