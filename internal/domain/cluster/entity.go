package cluster

import "time"

// 許可される回転角度（度）
var allowedRotations = map[int]bool{0: true, 90: true, 180: true, 270: true}

// Cluster は座席をまとめる島（グリッド配置）を表す
type Cluster struct {
	ID        string
	Label     string
	PositionX int
	PositionY int
	Rotation  int // 0, 90, 180, 270 のいずれか
	GridCols  int
	GridRows  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCluster は新しいクラスタを作成する
func NewCluster(label string, x, y, rotation, cols, rows int) *Cluster {
	now := time.Now()
	return &Cluster{
		Label:     label,
		PositionX: x,
		PositionY: y,
		Rotation:  rotation,
		GridCols:  cols,
		GridRows:  rows,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Capacity はクラスタに配置できる座席数の上限を返す
func (c *Cluster) Capacity() int {
	return c.GridCols * c.GridRows
}

// Validate はクラスタの検証を行う
// グリッドは少なくとも一辺が2以下であること（全席へ手が届く配置ルール）
func (c *Cluster) Validate() error {
	if !allowedRotations[c.Rotation] {
		return ErrInvalidRotation
	}
	if c.GridCols < 1 || c.GridRows < 1 {
		return ErrInvalidGrid
	}
	if c.GridCols > 2 && c.GridRows > 2 {
		return ErrGridTooDeep
	}
	return nil
}
