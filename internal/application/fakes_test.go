package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/cluster"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/user"
)

// テスト用のインメモリ実装
// memBookingRepo は本番のPostgres実装と同じく、有効な (座席, 日付, 枠) の
// 重複を ErrSlotTaken で拒否する。同時実行テストではこれが
// 部分一意インデックスの代役となる

type memTx struct{}

func (memTx) Commit() error   { return nil }
func (memTx) Rollback() error { return nil }

type memTxManager struct{}

func (memTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	return memTx{}, nil
}

type memSeatRepo struct {
	mu    sync.Mutex
	seats map[string]*seat.Seat
}

func newMemSeatRepo() *memSeatRepo {
	return &memSeatRepo{seats: make(map[string]*seat.Seat)}
}

func (r *memSeatRepo) Create(ctx context.Context, s *seat.Seat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.seats {
		if existing.Name == s.Name {
			return seat.ErrSeatNameTaken
		}
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.seats[s.ID] = s
	return nil
}

func (r *memSeatRepo) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.seats[id]
	if !ok {
		return nil, seat.ErrSeatNotFound
	}
	return s, nil
}

func (r *memSeatRepo) GetByName(ctx context.Context, name string) (*seat.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.seats {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, seat.ErrSeatNotFound
}

func (r *memSeatRepo) List(ctx context.Context) ([]*seat.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*seat.Seat, 0, len(r.seats))
	for _, s := range r.seats {
		out = append(out, s)
	}
	return out, nil
}

func (r *memSeatRepo) ListByCluster(ctx context.Context, clusterID string) ([]*seat.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*seat.Seat
	for _, s := range r.seats {
		if s.ClusterID != nil && *s.ClusterID == clusterID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSeatRepo) Update(ctx context.Context, s *seat.Seat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seats[s.ID]; !ok {
		return seat.ErrSeatNotFound
	}
	r.seats[s.ID] = s
	return nil
}

func (r *memSeatRepo) Delete(ctx context.Context, tx transaction.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seats[id]; !ok {
		return seat.ErrSeatNotFound
	}
	delete(r.seats, id)
	return nil
}

type memBookingRepo struct {
	mu        sync.Mutex
	bookings  map[string]*booking.Booking
	lastLimit int
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[string]*booking.Booking)}
}

func sameDay(a, b time.Time) bool {
	return a.Format(booking.DateLayout) == b.Format(booking.DateLayout)
}

// activeConflict は呼び出し側でロックを保持していること
func (r *memBookingRepo) activeConflict(b *booking.Booking) bool {
	for _, existing := range r.bookings {
		if existing.IsActive() &&
			existing.SeatID == b.SeatID &&
			sameDay(existing.Date, b.Date) &&
			existing.Slot == b.Slot {
			return true
		}
	}
	return false
}

func (r *memBookingRepo) Insert(ctx context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.activeConflict(b) {
		return booking.ErrSlotTaken
	}
	b.ID = uuid.NewString()
	r.bookings[b.ID] = b
	return nil
}

func (r *memBookingRepo) InsertBulk(ctx context.Context, tx transaction.Tx, bookings []*booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// 1件でも制約違反なら全件失敗（トランザクションのロールバック相当）
	for _, b := range bookings {
		if r.activeConflict(b) {
			return fmt.Errorf("一括予約に失敗: %w", booking.ErrSlotTaken)
		}
	}
	for _, b := range bookings {
		b.ID = uuid.NewString()
		r.bookings[b.ID] = b
	}
	return nil
}

func (r *memBookingRepo) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return b, nil
}

func (r *memBookingRepo) FindActiveBySeatAndDate(ctx context.Context, seatID string, date time.Time) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.IsActive() && b.SeatID == seatID && sameDay(b.Date, date) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) FindActiveByDate(ctx context.Context, date time.Time) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.IsActive() && sameDay(b.Date, date) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memBookingRepo) Update(ctx context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID]; !ok {
		return booking.ErrBookingNotFound
	}
	r.bookings[b.ID] = b
	return nil
}

func (r *memBookingRepo) DeleteBySeatID(ctx context.Context, tx transaction.Tx, seatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.bookings {
		if b.SeatID == seatID {
			delete(r.bookings, id)
		}
	}
	return nil
}

type memClusterRepo struct {
	mu       sync.Mutex
	clusters map[string]*cluster.Cluster
}

func newMemClusterRepo() *memClusterRepo {
	return &memClusterRepo{clusters: make(map[string]*cluster.Cluster)}
}

func (r *memClusterRepo) Create(ctx context.Context, c *cluster.Cluster) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	r.clusters[c.ID] = c
	return nil
}

func (r *memClusterRepo) GetByID(ctx context.Context, id string) (*cluster.Cluster, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clusters[id]
	if !ok {
		return nil, cluster.ErrClusterNotFound
	}
	return c, nil
}

func (r *memClusterRepo) List(ctx context.Context) ([]*cluster.Cluster, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*cluster.Cluster, 0, len(r.clusters))
	for _, c := range r.clusters {
		out = append(out, c)
	}
	return out, nil
}

func (r *memClusterRepo) Update(ctx context.Context, c *cluster.Cluster) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clusters[c.ID]; !ok {
		return cluster.ErrClusterNotFound
	}
	r.clusters[c.ID] = c
	return nil
}

func (r *memClusterRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clusters[id]; !ok {
		return cluster.ErrClusterNotFound
	}
	delete(r.clusters, id)
	return nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*user.User)}
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) Upsert(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.users[u.ID]; ok {
		// 既存ユーザーの役割は保持する
		existing.Name = u.Name
		existing.Email = u.Email
		existing.UpdatedAt = time.Now()
		return nil
	}
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) UpdateRole(ctx context.Context, id string, role user.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *memUserRepo) List(ctx context.Context) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}
