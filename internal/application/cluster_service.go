package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/cluster"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/seat"
)

// ClusterService はフロアプラン上のクラスタ管理を担う
type ClusterService struct {
	clusterRepo cluster.Repository
	seatRepo    seat.Repository
}

// NewClusterService は新しいClusterServiceを作成する
func NewClusterService(cr cluster.Repository, sr seat.Repository) *ClusterService {
	return &ClusterService{clusterRepo: cr, seatRepo: sr}
}

type CreateClusterInput struct {
	Label     string
	PositionX int
	PositionY int
	Rotation  int
	GridCols  int
	GridRows  int
}

func (s *ClusterService) CreateCluster(ctx context.Context, input CreateClusterInput) (*cluster.Cluster, error) {
	cl := cluster.NewCluster(input.Label, input.PositionX, input.PositionY, input.Rotation, input.GridCols, input.GridRows)
	if err := cl.Validate(); err != nil {
		return nil, err
	}
	if err := s.clusterRepo.Create(ctx, cl); err != nil {
		return nil, err
	}
	return cl, nil
}

type UpdateClusterInput struct {
	ID        string
	Label     string
	PositionX int
	PositionY int
	Rotation  int
	GridCols  int
	GridRows  int
}

// UpdateCluster はクラスタを更新する
// グリッドの縮小で既存の座席数が定員を超える場合は拒否する
func (s *ClusterService) UpdateCluster(ctx context.Context, input UpdateClusterInput) (*cluster.Cluster, error) {
	cl, err := s.clusterRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	cl.Label = input.Label
	cl.PositionX = input.PositionX
	cl.PositionY = input.PositionY
	cl.Rotation = input.Rotation
	cl.GridCols = input.GridCols
	cl.GridRows = input.GridRows
	if err := cl.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	members, err := s.seatRepo.ListByCluster(ctx, cl.ID)
	if err != nil {
		return nil, err
	}
	if len(members) > cl.Capacity() {
		return nil, cluster.ErrClusterFull
	}
	if err := s.clusterRepo.Update(ctx, cl); err != nil {
		return nil, err
	}
	return cl, nil
}

// DeleteCluster はクラスタを削除する
// 座席が残っている間は削除できない
func (s *ClusterService) DeleteCluster(ctx context.Context, id string) error {
	members, err := s.seatRepo.ListByCluster(ctx, id)
	if err != nil {
		return err
	}
	if len(members) > 0 {
		return cluster.ErrClusterInUse
	}
	return s.clusterRepo.Delete(ctx, id)
}

func (s *ClusterService) GetCluster(ctx context.Context, id string) (*cluster.Cluster, error) {
	return s.clusterRepo.GetByID(ctx, id)
}

func (s *ClusterService) ListClusters(ctx context.Context) ([]*cluster.Cluster, error) {
	return s.clusterRepo.List(ctx)
}
