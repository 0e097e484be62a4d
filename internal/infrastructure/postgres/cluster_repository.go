package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/cluster"
)

type clusterRow struct {
	ID        string    `db:"id"`
	Label     string    `db:"label"`
	PositionX int       `db:"position_x"`
	PositionY int       `db:"position_y"`
	Rotation  int       `db:"rotation"`
	GridCols  int       `db:"grid_cols"`
	GridRows  int       `db:"grid_rows"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *clusterRow) toEntity() *cluster.Cluster {
	return &cluster.Cluster{
		ID: r.ID, Label: r.Label,
		PositionX: r.PositionX, PositionY: r.PositionY,
		Rotation: r.Rotation, GridCols: r.GridCols, GridRows: r.GridRows,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type ClusterRepository struct{ db *sqlx.DB }

func NewClusterRepository(db *sqlx.DB) *ClusterRepository {
	return &ClusterRepository{db: db}
}

func (r *ClusterRepository) Create(ctx context.Context, c *cluster.Cluster) error {
	query := `INSERT INTO clusters (label, position_x, position_y, rotation, grid_cols, grid_rows, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		c.Label, c.PositionX, c.PositionY, c.Rotation, c.GridCols, c.GridRows, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID); err != nil {
		return fmt.Errorf("クラスタ作成に失敗: %w", err)
	}
	return nil
}

func (r *ClusterRepository) GetByID(ctx context.Context, id string) (*cluster.Cluster, error) {
	var row clusterRow
	query := `SELECT id, label, position_x, position_y, rotation, grid_cols, grid_rows, created_at, updated_at FROM clusters WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cluster.ErrClusterNotFound
		}
		return nil, fmt.Errorf("クラスタ取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ClusterRepository) List(ctx context.Context) ([]*cluster.Cluster, error) {
	var rows []clusterRow
	query := `SELECT id, label, position_x, position_y, rotation, grid_cols, grid_rows, created_at, updated_at FROM clusters ORDER BY label, id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("クラスタ一覧取得に失敗: %w", err)
	}
	clusters := make([]*cluster.Cluster, len(rows))
	for i := range rows {
		clusters[i] = rows[i].toEntity()
	}
	return clusters, nil
}

func (r *ClusterRepository) Update(ctx context.Context, c *cluster.Cluster) error {
	query := `UPDATE clusters SET label = $1, position_x = $2, position_y = $3, rotation = $4, grid_cols = $5, grid_rows = $6, updated_at = $7 WHERE id = $8`
	result, err := r.db.ExecContext(ctx, query,
		c.Label, c.PositionX, c.PositionY, c.Rotation, c.GridCols, c.GridRows, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("クラスタ更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return cluster.ErrClusterNotFound
	}
	return nil
}

func (r *ClusterRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clusters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("クラスタ削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return cluster.ErrClusterNotFound
	}
	return nil
}

var _ cluster.Repository = (*ClusterRepository)(nil)
