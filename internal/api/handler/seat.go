package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/application"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/cluster"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/seat"
)

type SeatHandler struct {
	service SeatServiceInterface
}

func NewSeatHandler(s SeatServiceInterface) *SeatHandler {
	return &SeatHandler{service: s}
}

type CreateSeatRequest struct {
	Name       string            `json:"name" validate:"required"`
	Type       string            `json:"type" validate:"required,oneof=solo team_cluster"`
	HasMonitor bool              `json:"has_monitor"`
	PositionX  int               `json:"position_x" validate:"gte=0"`
	PositionY  int               `json:"position_y" validate:"gte=0"`
	ClusterID  *string           `json:"cluster_id"`
	Metadata   map[string]string `json:"metadata"`
}

// UpdateSeatRequest は座席の部分更新リクエスト
// 省略されたフィールドは変更されない
type UpdateSeatRequest struct {
	Name         *string           `json:"name"`
	Type         *string           `json:"type" validate:"omitempty,oneof=solo team_cluster"`
	HasMonitor   *bool             `json:"has_monitor"`
	PositionX    *int              `json:"position_x" validate:"omitempty,gte=0"`
	PositionY    *int              `json:"position_y" validate:"omitempty,gte=0"`
	ClusterID    *string           `json:"cluster_id"`
	ClearCluster bool              `json:"clear_cluster"`
	Metadata     map[string]string `json:"metadata"`
}

type SetBlockedRequest struct {
	Blocked *bool `json:"blocked" validate:"required"`
}

type SetLongTermRequest struct {
	Reserved *bool  `json:"reserved" validate:"required"`
	Holder   string `json:"holder"`
	Until    string `json:"until"`
}

type SeatResponse struct {
	ID                    string            `json:"id"`
	Name                  string            `json:"name"`
	Type                  string            `json:"type"`
	HasMonitor            bool              `json:"has_monitor"`
	IsBlocked             bool              `json:"is_blocked"`
	IsLongTermReserved    bool              `json:"is_long_term_reserved"`
	LongTermReservedBy    *string           `json:"long_term_reserved_by,omitempty"`
	LongTermReservedUntil *string           `json:"long_term_reserved_until,omitempty"`
	PositionX             int               `json:"position_x"`
	PositionY             int               `json:"position_y"`
	ClusterID             *string           `json:"cluster_id,omitempty"`
	Metadata              map[string]string `json:"metadata"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

func toSeatResponse(s *seat.Seat) SeatResponse {
	resp := SeatResponse{
		ID: s.ID, Name: s.Name, Type: string(s.Type),
		HasMonitor: s.HasMonitor, IsBlocked: s.IsBlocked,
		IsLongTermReserved: s.IsLongTermReserved,
		LongTermReservedBy: s.LongTermReservedBy,
		PositionX:          s.PositionX, PositionY: s.PositionY,
		ClusterID: s.ClusterID, Metadata: s.Metadata,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
	if s.LongTermReservedUntil != nil {
		until := s.LongTermReservedUntil.Format(booking.DateLayout)
		resp.LongTermReservedUntil = &until
	}
	return resp
}

// List は全座席を返す
// name クエリ指定時は名前で1件検索する
func (h *SeatHandler) List(c echo.Context) error {
	if name := c.QueryParam("name"); name != "" {
		s, err := h.service.GetSeatByName(c.Request().Context(), name)
		if err != nil {
			if errors.Is(err, seat.ErrSeatNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, err.Error())
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, []SeatResponse{toSeatResponse(s)})
	}
	seats, err := h.service.ListSeats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID は座席を1件返す
func (h *SeatHandler) GetByID(c echo.Context) error {
	s, err := h.service.GetSeat(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, seat.ErrSeatNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}

// Create は座席を作成する（管理者）
func (h *SeatHandler) Create(c echo.Context) error {
	var req CreateSeatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	s, err := h.service.CreateSeat(c.Request().Context(), application.CreateSeatInput{
		Name: req.Name, Type: seat.Type(req.Type), HasMonitor: req.HasMonitor,
		PositionX: req.PositionX, PositionY: req.PositionY,
		ClusterID: req.ClusterID, Metadata: req.Metadata,
	})
	if err != nil {
		return seatErrorToHTTP(err)
	}
	return c.JSON(http.StatusCreated, toSeatResponse(s))
}

// Update は座席を部分更新する（管理者）
func (h *SeatHandler) Update(c echo.Context) error {
	var req UpdateSeatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	patch := seat.Patch{
		Name:         req.Name,
		HasMonitor:   req.HasMonitor,
		PositionX:    req.PositionX,
		PositionY:    req.PositionY,
		ClusterID:    req.ClusterID,
		ClearCluster: req.ClearCluster,
		Metadata:     req.Metadata,
	}
	if req.Type != nil {
		t := seat.Type(*req.Type)
		patch.Type = &t
	}
	s, err := h.service.UpdateSeat(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return seatErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}

// Delete は座席を削除する（管理者、予約も連鎖削除される）
func (h *SeatHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteSeat(c.Request().Context(), c.Param("id")); err != nil {
		return seatErrorToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetBlocked は座席の利用停止状態を変更する（管理者）
func (h *SeatHandler) SetBlocked(c echo.Context) error {
	var req SetBlockedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	s, err := h.service.SetBlocked(c.Request().Context(), c.Param("id"), *req.Blocked)
	if err != nil {
		return seatErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}

// SetLongTerm は座席の長期予約を設定・解除する（管理者）
func (h *SeatHandler) SetLongTerm(c echo.Context) error {
	var req SetLongTermRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	var until *time.Time
	if req.Until != "" {
		d, err := booking.ParseDate(req.Until)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		until = &d
	}
	s, err := h.service.SetLongTermReservation(c.Request().Context(), c.Param("id"), *req.Reserved, req.Holder, until)
	if err != nil {
		return seatErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}

// seatErrorToHTTP は座席操作のドメインエラーをHTTPエラーに変換する
func seatErrorToHTTP(err error) error {
	switch {
	case errors.Is(err, seat.ErrSeatNotFound), errors.Is(err, cluster.ErrClusterNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, seat.ErrSeatNameTaken),
		errors.Is(err, seat.ErrPositionOccupied),
		errors.Is(err, cluster.ErrClusterFull):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, seat.ErrSeatNameRequired),
		errors.Is(err, seat.ErrInvalidSeatType),
		errors.Is(err, seat.ErrInvalidPosition),
		errors.Is(err, seat.ErrHolderRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
