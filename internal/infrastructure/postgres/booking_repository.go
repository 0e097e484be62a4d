package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/transaction"
)

type bookingRow struct {
	ID          string     `db:"id"`
	SeatID      string     `db:"seat_id"`
	UserID      string     `db:"user_id"`
	UserName    string     `db:"user_name"`
	UserEmail   string     `db:"user_email"`
	Date        time.Time  `db:"date"`
	Slot        string     `db:"slot"`
	CreatedAt   time.Time  `db:"created_at"`
	CancelledAt *time.Time `db:"cancelled_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID: r.ID, SeatID: r.SeatID, UserID: r.UserID,
		UserName: r.UserName, UserEmail: r.UserEmail,
		Date: r.Date, Slot: booking.Slot(r.Slot),
		CreatedAt: r.CreatedAt, CancelledAt: r.CancelledAt,
	}
}

const bookingColumns = `id, seat_id, user_id, user_name, user_email, date, slot, created_at, cancelled_at`

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Insert(ctx context.Context, b *booking.Booking) error {
	query := `INSERT INTO bookings (seat_id, user_id, user_name, user_email, date, slot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		b.SeatID, b.UserID, b.UserName, b.UserEmail, b.Date, string(b.Slot), b.CreatedAt,
	).Scan(&b.ID); err != nil {
		return remapBookingConstraint(err)
	}
	return nil
}

func (r *BookingRepository) InsertBulk(ctx context.Context, tx transaction.Tx, bookings []*booking.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)

	// マルチバリューINSERTを構築（1トランザクションで全件コミットする）
	query := `INSERT INTO bookings (seat_id, user_id, user_name, user_email, date, slot, created_at) VALUES `
	args := make([]interface{}, 0, len(bookings)*7)
	placeholders := make([]string, 0, len(bookings))
	for i, b := range bookings {
		base := i * 7
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args, b.SeatID, b.UserID, b.UserName, b.UserEmail, b.Date, string(b.Slot), b.CreatedAt)
	}
	query += strings.Join(placeholders, ", ") + " RETURNING id"

	rows, err := sqlxTx.QueryContext(ctx, query, args...)
	if err != nil {
		return remapBookingConstraint(err)
	}
	defer rows.Close()

	// RETURNING はVALUESの順序で返る
	i := 0
	for rows.Next() {
		if i >= len(bookings) {
			break
		}
		if err := rows.Scan(&bookings[i].ID); err != nil {
			return fmt.Errorf("予約IDの取得に失敗: %w", err)
		}
		i++
	}
	if err := rows.Err(); err != nil {
		return remapBookingConstraint(err)
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) FindActiveBySeatAndDate(ctx context.Context, seatID string, date time.Time) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE seat_id = $1 AND date = $2 AND cancelled_at IS NULL ORDER BY slot`
	if err := r.db.SelectContext(ctx, &rows, query, seatID, date); err != nil {
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return rowsToBookings(rows), nil
}

func (r *BookingRepository) FindActiveByDate(ctx context.Context, date time.Time) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE date = $1 AND cancelled_at IS NULL ORDER BY seat_id, slot`
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return rowsToBookings(rows), nil
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY date DESC, slot, created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	return rowsToBookings(rows), nil
}

func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	result, err := r.db.ExecContext(ctx, `UPDATE bookings SET cancelled_at = $1 WHERE id = $2`, b.CancelledAt, b.ID)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) DeleteBySeatID(ctx context.Context, tx transaction.Tx, seatID string) error {
	sqlxTx := UnwrapTx(tx)
	if _, err := sqlxTx.ExecContext(ctx, `DELETE FROM bookings WHERE seat_id = $1`, seatID); err != nil {
		return fmt.Errorf("座席の予約削除に失敗: %w", err)
	}
	return nil
}

// remapBookingConstraint は部分一意インデックス違反を ErrSlotTaken に変換する
// 事前チェックをすり抜けた同時予約はここで検出される
func remapBookingConstraint(err error) error {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return booking.ErrSlotTaken
	}
	return fmt.Errorf("予約作成に失敗: %w", err)
}

func rowsToBookings(rows []bookingRow) []*booking.Booking {
	bookings := make([]*booking.Booking, len(rows))
	for i := range rows {
		bookings[i] = rows[i].toEntity()
	}
	return bookings
}

var _ booking.Repository = (*BookingRepository)(nil)
