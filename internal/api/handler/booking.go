package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	appmw "github.com/sanosuguru/go-hotdesk-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/seat"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	SeatID string `json:"seat_id" validate:"required"`
	Date   string `json:"date" validate:"required"`
	Slot   string `json:"slot" validate:"required,oneof=AM PM"`
}

type BulkBookingRequest struct {
	SeatIDs []string `json:"seat_ids" validate:"required,min=1"`
	Dates   []string `json:"dates" validate:"required,min=1"`
	Slots   []string `json:"slots" validate:"required,min=1,dive,oneof=AM PM"`
}

type BookingResponse struct {
	ID          string     `json:"id"`
	SeatID      string     `json:"seat_id"`
	UserID      string     `json:"user_id"`
	UserName    string     `json:"user_name"`
	UserEmail   string     `json:"user_email"`
	Date        string     `json:"date"`
	Slot        string     `json:"slot"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

type BulkBookingResponse struct {
	Created      []BookingResponse `json:"created"`
	Conflicts    []string          `json:"conflicts"`
	CreatedCount int               `json:"created_count"`
	FailedCount  int               `json:"failed_count"`
}

type AvailabilityResponse struct {
	Bookable bool   `json:"bookable"`
	Reason   string `json:"reason,omitempty"`
}

type OccupancyResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID: b.ID, SeatID: b.SeatID, UserID: b.UserID,
		UserName: b.UserName, UserEmail: b.UserEmail,
		Date: b.Date.Format(booking.DateLayout), Slot: string(b.Slot),
		CreatedAt: b.CreatedAt, CancelledAt: b.CancelledAt,
	}
}

func toBulkResponse(r *booking.BulkResult) BulkBookingResponse {
	created := make([]BookingResponse, len(r.Created))
	for i, b := range r.Created {
		created[i] = toBookingResponse(b)
	}
	conflicts := r.Conflicts
	if conflicts == nil {
		conflicts = []string{}
	}
	return BulkBookingResponse{
		Created:      created,
		Conflicts:    conflicts,
		CreatedCount: r.CreatedCount,
		FailedCount:  r.FailedCount,
	}
}

// Create は予約を1件作成する
func (h *BookingHandler) Create(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	date, err := booking.ParseDate(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	b, err := h.service.CreateBooking(c.Request().Context(), req.SeatID, appmw.CurrentIdentity(c), date, booking.Slot(req.Slot))
	if err != nil {
		switch {
		case errors.Is(err, seat.ErrSeatNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, booking.ErrSlotTaken),
			errors.Is(err, booking.ErrSeatBlocked),
			errors.Is(err, booking.ErrSeatLongTermReserved):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// CreateBulk は 座席×日付×枠 の一括予約を作成する
// 1件も作成できなかった場合は409とし、競合一覧をボディで返す
func (h *BookingHandler) CreateBulk(c echo.Context) error {
	var req BulkBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	dates := make([]time.Time, len(req.Dates))
	for i, d := range req.Dates {
		date, err := booking.ParseDate(d)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		dates[i] = date
	}
	slots := make([]booking.Slot, len(req.Slots))
	for i, s := range req.Slots {
		slots[i] = booking.Slot(s)
	}

	result, err := h.service.CreateBulkBookings(c.Request().Context(), req.SeatIDs, dates, slots, appmw.CurrentIdentity(c))
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNoBookingsCreated):
			return c.JSON(http.StatusConflict, toBulkResponse(result))
		case errors.Is(err, booking.ErrInvalidSlot):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, booking.ErrSlotTaken):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toBulkResponse(result))
}

// Cancel は予約をキャンセルする
func (h *BookingHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	identity := appmw.CurrentIdentity(c)

	b, err := h.service.CancelBooking(c.Request().Context(), id, identity.UserID, appmw.CurrentRole(c))
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, booking.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetByDate は日付の有効な予約一覧を返す（出社ビュー用）
func (h *BookingHandler) GetByDate(c echo.Context) error {
	date, err := booking.ParseDate(c.Param("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	bookings, err := h.service.GetBookingsForDate(c.Request().Context(), date)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// CountByDate は日付の有効予約数を返す
func (h *BookingHandler) CountByDate(c echo.Context) error {
	raw := c.Param("date")
	date, err := booking.ParseDate(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	count, err := h.service.CountActiveForDate(c.Request().Context(), date)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, OccupancyResponse{Date: raw, Count: count})
}

// GetMine はログインユーザーの予約一覧を返す
func (h *BookingHandler) GetMine(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	bookings, err := h.service.ListUserBookings(c.Request().Context(), appmw.CurrentIdentity(c).UserID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// CheckAvailability は座席が予約可能かを返す
func (h *BookingHandler) CheckAvailability(c echo.Context) error {
	seatID := c.QueryParam("seat_id")
	slot := booking.Slot(c.QueryParam("slot"))
	if seatID == "" || !slot.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "seat_idとslot（AM/PM）を指定してください")
	}
	date, err := booking.ParseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.service.CheckAvailability(c.Request().Context(), seatID, date, slot)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{Bookable: result.Bookable, Reason: result.Reason})
}
