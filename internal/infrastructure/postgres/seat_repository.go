package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/transaction"
)

type seatRow struct {
	ID                    string     `db:"id"`
	Name                  string     `db:"name"`
	Type                  string     `db:"type"`
	HasMonitor            bool       `db:"has_monitor"`
	IsBlocked             bool       `db:"is_blocked"`
	IsLongTermReserved    bool       `db:"is_long_term_reserved"`
	LongTermReservedBy    *string    `db:"long_term_reserved_by"`
	LongTermReservedUntil *time.Time `db:"long_term_reserved_until"`
	PositionX             int        `db:"position_x"`
	PositionY             int        `db:"position_y"`
	ClusterID             *string    `db:"cluster_id"`
	Metadata              []byte     `db:"metadata"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

func (r *seatRow) toEntity() (*seat.Seat, error) {
	metadata := map[string]string{}
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("メタデータの読み込みに失敗: %w", err)
		}
	}
	return &seat.Seat{
		ID: r.ID, Name: r.Name, Type: seat.Type(r.Type),
		HasMonitor: r.HasMonitor, IsBlocked: r.IsBlocked,
		IsLongTermReserved:    r.IsLongTermReserved,
		LongTermReservedBy:    r.LongTermReservedBy,
		LongTermReservedUntil: r.LongTermReservedUntil,
		PositionX:             r.PositionX, PositionY: r.PositionY,
		ClusterID: r.ClusterID, Metadata: metadata,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}, nil
}

const seatColumns = `id, name, type, has_monitor, is_blocked, is_long_term_reserved, long_term_reserved_by, long_term_reserved_until, position_x, position_y, cluster_id, metadata, created_at, updated_at`

type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) Create(ctx context.Context, s *seat.Seat) error {
	metadata, err := json.Marshal(s.Metadata)
	if err != nil {
		return fmt.Errorf("メタデータの変換に失敗: %w", err)
	}
	query := `INSERT INTO seats (name, type, has_monitor, is_blocked, is_long_term_reserved, long_term_reserved_by, long_term_reserved_until, position_x, position_y, cluster_id, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		s.Name, string(s.Type), s.HasMonitor, s.IsBlocked,
		s.IsLongTermReserved, s.LongTermReservedBy, s.LongTermReservedUntil,
		s.PositionX, s.PositionY, s.ClusterID, metadata,
		s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID); err != nil {
		return remapSeatConstraint(err)
	}
	return nil
}

func (r *SeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	var row seatRow
	query := `SELECT ` + seatColumns + ` FROM seats WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity()
}

func (r *SeatRepository) GetByName(ctx context.Context, name string) (*seat.Seat, error) {
	var row seatRow
	query := `SELECT ` + seatColumns + ` FROM seats WHERE name = $1`
	if err := r.db.GetContext(ctx, &row, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity()
}

func (r *SeatRepository) List(ctx context.Context) ([]*seat.Seat, error) {
	var rows []seatRow
	query := `SELECT ` + seatColumns + ` FROM seats ORDER BY name`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	return rowsToSeats(rows)
}

func (r *SeatRepository) ListByCluster(ctx context.Context, clusterID string) ([]*seat.Seat, error) {
	var rows []seatRow
	query := `SELECT ` + seatColumns + ` FROM seats WHERE cluster_id = $1 ORDER BY position_y, position_x`
	if err := r.db.SelectContext(ctx, &rows, query, clusterID); err != nil {
		return nil, fmt.Errorf("クラスタ座席取得に失敗: %w", err)
	}
	return rowsToSeats(rows)
}

func (r *SeatRepository) Update(ctx context.Context, s *seat.Seat) error {
	metadata, err := json.Marshal(s.Metadata)
	if err != nil {
		return fmt.Errorf("メタデータの変換に失敗: %w", err)
	}
	query := `UPDATE seats SET name = $1, type = $2, has_monitor = $3, is_blocked = $4,
		is_long_term_reserved = $5, long_term_reserved_by = $6, long_term_reserved_until = $7,
		position_x = $8, position_y = $9, cluster_id = $10, metadata = $11, updated_at = $12
		WHERE id = $13`
	result, err := r.db.ExecContext(ctx, query,
		s.Name, string(s.Type), s.HasMonitor, s.IsBlocked,
		s.IsLongTermReserved, s.LongTermReservedBy, s.LongTermReservedUntil,
		s.PositionX, s.PositionY, s.ClusterID, metadata, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return remapSeatConstraint(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return seat.ErrSeatNotFound
	}
	return nil
}

func (r *SeatRepository) Delete(ctx context.Context, tx transaction.Tx, id string) error {
	sqlxTx := UnwrapTx(tx)
	result, err := sqlxTx.ExecContext(ctx, `DELETE FROM seats WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("座席削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return seat.ErrSeatNotFound
	}
	return nil
}

// remapSeatConstraint は一意制約違反をドメインエラーに変換する
func remapSeatConstraint(err error) error {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.Constraint {
		case "seats_name_key":
			return seat.ErrSeatNameTaken
		case "seats_cluster_position_idx":
			return seat.ErrPositionOccupied
		}
	}
	return fmt.Errorf("座席の保存に失敗: %w", err)
}

func rowsToSeats(rows []seatRow) ([]*seat.Seat, error) {
	seats := make([]*seat.Seat, len(rows))
	for i := range rows {
		s, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		seats[i] = s
	}
	return seats, nil
}

var _ seat.Repository = (*SeatRepository)(nil)
