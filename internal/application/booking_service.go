package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/user"
	redisinfra "github.com/sanosuguru/go-hotdesk-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/pkg/metrics"
)

const (
	occupancyCacheTTL = 30 * time.Second
	bulkLockTTL       = 10 * time.Second
)

// Identity は予約作成者の情報を表す
// 名前とメールは予約行にスナップショットとして保存される
type Identity struct {
	UserID    string
	UserName  string
	UserEmail string
}

// EventPublisher は予約イベントの発行インターフェース
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, b *booking.Booking) error
	PublishBookingCancelled(ctx context.Context, b *booking.Booking) error
}

// BookingService は予約の作成・競合解決・キャンセルを担う
type BookingService struct {
	txManager   transaction.Manager
	bookingRepo booking.Repository
	seatRepo    seat.Repository
	lockManager redisinfra.LockManagerInterface
	cache       *redisinfra.OccupancyCache
	publisher   EventPublisher
}

// NewBookingService は新しいBookingServiceを作成する
// lockManager / cache / publisher は nil でもよく、その場合は各機能が無効となる
func NewBookingService(
	tm transaction.Manager,
	br booking.Repository,
	sr seat.Repository,
	lm redisinfra.LockManagerInterface,
	cache *redisinfra.OccupancyCache,
	pub EventPublisher,
) *BookingService {
	return &BookingService{
		txManager:   tm,
		bookingRepo: br,
		seatRepo:    sr,
		lockManager: lm,
		cache:       cache,
		publisher:   pub,
	}
}

// CheckAvailability は座席が指定の日付・枠で予約可能かを返す
// 判定は固定順：座席の存在 → 利用停止 → 長期予約 → 枠の空き
// 副作用のない純粋な問い合わせ
func (s *BookingService) CheckAvailability(ctx context.Context, seatID string, date time.Time, slot booking.Slot) (booking.CheckResult, error) {
	se, err := s.seatRepo.GetByID(ctx, seatID)
	if err != nil {
		if errors.Is(err, seat.ErrSeatNotFound) {
			return booking.CheckResult{Bookable: false, Reason: booking.ReasonSeatNotFound}, nil
		}
		return booking.CheckResult{}, err
	}
	if reason, ok := seatStateReason(se); !ok {
		return booking.CheckResult{Bookable: false, Reason: reason}, nil
	}
	existing, err := s.bookingRepo.FindActiveBySeatAndDate(ctx, se.ID, date)
	if err != nil {
		return booking.CheckResult{}, err
	}
	for _, b := range existing {
		if b.Slot == slot {
			return booking.CheckResult{Bookable: false, Reason: booking.ReasonSlotTaken}, nil
		}
	}
	return booking.CheckResult{Bookable: true}, nil
}

// CreateBooking は予約を1件作成する
// 事前チェックを通過しても、コミット時の部分一意インデックス違反は
// ErrSlotTaken として返る（同時予約の敗者側）
func (s *BookingService) CreateBooking(ctx context.Context, seatID string, id Identity, date time.Time, slot booking.Slot) (*booking.Booking, error) {
	se, err := s.seatRepo.GetByID(ctx, seatID)
	if err != nil {
		return nil, err
	}
	if se.IsBlocked {
		countBooking("conflict")
		return nil, booking.ErrSeatBlocked
	}
	if se.IsLongTermReserved {
		countBooking("conflict")
		return nil, booking.ErrSeatLongTermReserved
	}

	existing, err := s.bookingRepo.FindActiveBySeatAndDate(ctx, se.ID, date)
	if err != nil {
		return nil, err
	}
	for _, eb := range existing {
		if eb.Slot == slot {
			countBooking("conflict")
			return nil, booking.ErrSlotTaken
		}
	}

	b := booking.NewBooking(se.ID, id.UserID, id.UserName, id.UserEmail, date, slot)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Insert(ctx, b); err != nil {
		if errors.Is(err, booking.ErrSlotTaken) {
			countBooking("conflict")
		} else {
			countBooking("error")
		}
		return nil, err
	}
	countBooking("created")

	s.invalidateOccupancy(ctx, b.Date)
	s.publishCreated(ctx, b)
	return b, nil
}

// CreateBulkBookings は 座席×日付×枠 の全組み合わせを検証し、
// 受理分を1トランザクションで一括作成する
//
// 利用停止・長期予約の座席は座席単位で1件の競合として記録し、
// その座席の日付×枠の組み合わせは展開しない。枠の重複は組み合わせ単位で
// 競合として記録する。受理分が0件なら ErrNoBookingsCreated を返す
// （その場合も競合一覧はレポートに含まれる）
func (s *BookingService) CreateBulkBookings(ctx context.Context, seatIDs []string, dates []time.Time, slots []booking.Slot, id Identity) (*booking.BulkResult, error) {
	for _, slot := range slots {
		if !slot.Valid() {
			return nil, booking.ErrInvalidSlot
		}
	}
	if m := metrics.Get(); m != nil {
		m.BulkCombinations.Observe(float64(len(seatIDs) * len(dates) * len(slots)))
	}

	// 分散ロックを取得（座席IDをソートしてデッドロックを防止）
	// 取得できない場合もDBの一意制約が正しさを保証するため、警告のみで続行する
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, buildSeatLockKey(seatIDs), bulkLockTTL, 3, 100*time.Millisecond)
		if err != nil {
			logger.Warn("一括予約のロック取得に失敗、制約のみで続行", zap.Error(err))
		} else {
			defer lock.Release(ctx)
		}
	}

	var pending []*booking.Booking
	var conflicts []string

	for _, seatID := range seatIDs {
		se, err := s.seatRepo.GetByID(ctx, seatID)
		if err != nil {
			if errors.Is(err, seat.ErrSeatNotFound) {
				conflicts = append(conflicts, fmt.Sprintf("%s: %s", seatID, booking.ReasonSeatNotFound))
				continue
			}
			return nil, err
		}
		// 座席単位の失格は1件の競合として記録し、日付×枠には展開しない
		if reason, ok := seatStateReason(se); !ok {
			conflicts = append(conflicts, fmt.Sprintf("%s: %s", se.Name, reason))
			continue
		}

		for _, date := range dates {
			// (座席, 日付) ごとに1回だけ取得し、枠のループで使い回す
			existing, err := s.bookingRepo.FindActiveBySeatAndDate(ctx, se.ID, date)
			if err != nil {
				return nil, err
			}
			taken := make(map[booking.Slot]bool, len(existing))
			for _, eb := range existing {
				taken[eb.Slot] = true
			}

			for _, slot := range slots {
				if taken[slot] {
					conflicts = append(conflicts, fmt.Sprintf("%s %s %s は既に予約済みです", se.Name, date.Format(booking.DateLayout), slot))
					continue
				}
				pending = append(pending, booking.NewBooking(se.ID, id.UserID, id.UserName, id.UserEmail, date, slot))
				taken[slot] = true // 同一リクエスト内の重複枠を弾く
			}
		}
	}

	if len(pending) == 0 {
		countBookingN("conflict", len(conflicts))
		return &booking.BulkResult{
			Conflicts:   conflicts,
			FailedCount: len(conflicts),
		}, booking.ErrNoBookingsCreated
	}

	// 受理分は全件まとめてコミットする（途中失敗時は全件ロールバック）
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.bookingRepo.InsertBulk(ctx, tx, pending); err != nil {
		countBookingN("error", len(pending))
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	countBookingN("created", len(pending))
	countBookingN("conflict", len(conflicts))

	for _, date := range dates {
		s.invalidateOccupancy(ctx, date)
	}
	for _, b := range pending {
		s.publishCreated(ctx, b)
	}

	return &booking.BulkResult{
		Created:      pending,
		Conflicts:    conflicts,
		CreatedCount: len(pending),
		FailedCount:  len(conflicts),
	}, nil
}

// CancelBooking は予約をキャンセルする
// キャンセルできるのは予約の所有者本人と管理者のみ
// 既にキャンセル済みの予約はそのまま返す（冪等、タイムスタンプは保持）
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, requesterID string, requesterRole user.Role) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		countCancel("not_found")
		return nil, err
	}
	if !b.CancellableBy(requesterID, requesterRole.IsAdmin()) {
		countCancel("forbidden")
		return nil, booking.ErrForbidden
	}
	if !b.Cancel() {
		return b, nil
	}
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, err
	}
	countCancel("cancelled")

	s.invalidateOccupancy(ctx, b.Date)
	if s.publisher != nil {
		if err := s.publisher.PublishBookingCancelled(ctx, b); err != nil {
			logger.Warn("キャンセルイベント発行に失敗", zap.Error(err))
		}
	}
	return b, nil
}

// GetBookingsForDate は日付に対する全座席の有効な予約を返す（出社ビュー用）
func (s *BookingService) GetBookingsForDate(ctx context.Context, date time.Time) ([]*booking.Booking, error) {
	return s.bookingRepo.FindActiveByDate(ctx, date)
}

// CountActiveForDate は日付の有効予約数を返す（キャッシュ付き）
func (s *BookingService) CountActiveForDate(ctx context.Context, date time.Time) (int, error) {
	key := date.Format(booking.DateLayout)
	if s.cache != nil {
		count, err := s.cache.GetActiveCount(ctx, key)
		if err == nil {
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	bookings, err := s.bookingRepo.FindActiveByDate(ctx, date)
	if err != nil {
		return 0, err
	}
	count := len(bookings)

	if s.cache != nil {
		if cacheErr := s.cache.SetActiveCount(ctx, key, count, occupancyCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	return count, nil
}

// ListUserBookings はユーザーの予約一覧を返す
func (s *BookingService) ListUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.bookingRepo.GetByUserID(ctx, userID, limit, offset)
}

// seatStateReason は座席の管理状態による予約不可理由を返す
// 利用停止・長期予約は予約履歴より先に判定される
func seatStateReason(se *seat.Seat) (string, bool) {
	if se.IsBlocked {
		return booking.ReasonBlocked, false
	}
	if se.IsLongTermReserved {
		return booking.ReasonLongTermReserved, false
	}
	return "", true
}

// buildSeatLockKey は座席IDからロックキーを生成（ソートしてデッドロック防止）
func buildSeatLockKey(seatIDs []string) string {
	sorted := make([]string, len(seatIDs))
	copy(sorted, seatIDs)
	sort.Strings(sorted)
	return "seats:" + strings.Join(sorted, ",")
}

func (s *BookingService) invalidateOccupancy(ctx context.Context, date time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, date.Format(booking.DateLayout)); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.Error(err))
	}
}

func (s *BookingService) publishCreated(ctx context.Context, b *booking.Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBookingCreated(ctx, b); err != nil {
		logger.Warn("予約イベント発行に失敗", zap.Error(err))
	}
}

func countBooking(status string) {
	if m := metrics.Get(); m != nil {
		m.BookingsTotal.WithLabelValues(status).Inc()
	}
}

func countBookingN(status string, n int) {
	if n == 0 {
		return
	}
	if m := metrics.Get(); m != nil {
		m.BookingsTotal.WithLabelValues(status).Add(float64(n))
	}
}

func countCancel(status string) {
	if m := metrics.Get(); m != nil {
		m.CancellationsTotal.WithLabelValues(status).Inc()
	}
}
