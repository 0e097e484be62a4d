package seat

import "time"

// Patch は座席の部分更新を表す
// 各フィールドは nil なら「未指定」を意味し、ポインタで指定された値のみ反映される
// クラスタ解除は ClearCluster で明示する（ClusterID=nil と「未指定」を区別するため）
type Patch struct {
	Name         *string
	Type         *Type
	HasMonitor   *bool
	PositionX    *int
	PositionY    *int
	ClusterID    *string
	ClearCluster bool
	Metadata     map[string]string // nil なら未指定、非 nil なら全置換
}

// Apply はパッチを座席に適用する
func (p *Patch) Apply(s *Seat) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Type != nil {
		s.Type = *p.Type
	}
	if p.HasMonitor != nil {
		s.HasMonitor = *p.HasMonitor
	}
	if p.PositionX != nil {
		s.PositionX = *p.PositionX
	}
	if p.PositionY != nil {
		s.PositionY = *p.PositionY
	}
	if p.ClearCluster {
		s.ClusterID = nil
	} else if p.ClusterID != nil {
		s.ClusterID = p.ClusterID
	}
	if p.Metadata != nil {
		s.Metadata = p.Metadata
	}
	s.UpdatedAt = time.Now()
}

// Empty はパッチが何も指定していないかを返す
func (p *Patch) Empty() bool {
	return p.Name == nil && p.Type == nil && p.HasMonitor == nil &&
		p.PositionX == nil && p.PositionY == nil &&
		p.ClusterID == nil && !p.ClearCluster && p.Metadata == nil
}
