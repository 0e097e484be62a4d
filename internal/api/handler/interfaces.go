package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/application"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/cluster"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/user"
)

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	CheckAvailability(ctx context.Context, seatID string, date time.Time, slot booking.Slot) (booking.CheckResult, error)
	CreateBooking(ctx context.Context, seatID string, id application.Identity, date time.Time, slot booking.Slot) (*booking.Booking, error)
	CreateBulkBookings(ctx context.Context, seatIDs []string, dates []time.Time, slots []booking.Slot, id application.Identity) (*booking.BulkResult, error)
	CancelBooking(ctx context.Context, bookingID, requesterID string, requesterRole user.Role) (*booking.Booking, error)
	GetBookingsForDate(ctx context.Context, date time.Time) ([]*booking.Booking, error)
	CountActiveForDate(ctx context.Context, date time.Time) (int, error)
	ListUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error)
}

// SeatServiceInterface は座席サービスのインターフェース
type SeatServiceInterface interface {
	CreateSeat(ctx context.Context, input application.CreateSeatInput) (*seat.Seat, error)
	UpdateSeat(ctx context.Context, id string, patch seat.Patch) (*seat.Seat, error)
	DeleteSeat(ctx context.Context, id string) error
	SetBlocked(ctx context.Context, id string, blocked bool) (*seat.Seat, error)
	SetLongTermReservation(ctx context.Context, id string, reserved bool, holder string, until *time.Time) (*seat.Seat, error)
	GetSeat(ctx context.Context, id string) (*seat.Seat, error)
	GetSeatByName(ctx context.Context, name string) (*seat.Seat, error)
	ListSeats(ctx context.Context) ([]*seat.Seat, error)
}

// ClusterServiceInterface はクラスタサービスのインターフェース
type ClusterServiceInterface interface {
	CreateCluster(ctx context.Context, input application.CreateClusterInput) (*cluster.Cluster, error)
	UpdateCluster(ctx context.Context, input application.UpdateClusterInput) (*cluster.Cluster, error)
	DeleteCluster(ctx context.Context, id string) error
	GetCluster(ctx context.Context, id string) (*cluster.Cluster, error)
	ListClusters(ctx context.Context) ([]*cluster.Cluster, error)
}

// UserServiceInterface はユーザーサービスのインターフェース
type UserServiceInterface interface {
	EnsureUser(ctx context.Context, id application.Identity) (*user.User, error)
	SetRole(ctx context.Context, id string, role user.Role) (*user.User, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
	ListUsers(ctx context.Context) ([]*user.User, error)
}
