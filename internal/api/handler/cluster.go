package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/application"
	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/cluster"
)

type ClusterHandler struct {
	service ClusterServiceInterface
}

func NewClusterHandler(s ClusterServiceInterface) *ClusterHandler {
	return &ClusterHandler{service: s}
}

type CreateClusterRequest struct {
	Label     string `json:"label" validate:"required"`
	PositionX int    `json:"position_x" validate:"gte=0"`
	PositionY int    `json:"position_y" validate:"gte=0"`
	Rotation  int    `json:"rotation" validate:"oneof=0 90 180 270"`
	GridCols  int    `json:"grid_cols" validate:"required,gte=1"`
	GridRows  int    `json:"grid_rows" validate:"required,gte=1"`
}

type UpdateClusterRequest struct {
	Label     string `json:"label" validate:"required"`
	PositionX int    `json:"position_x" validate:"gte=0"`
	PositionY int    `json:"position_y" validate:"gte=0"`
	Rotation  int    `json:"rotation" validate:"oneof=0 90 180 270"`
	GridCols  int    `json:"grid_cols" validate:"required,gte=1"`
	GridRows  int    `json:"grid_rows" validate:"required,gte=1"`
}

type ClusterResponse struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	PositionX int       `json:"position_x"`
	PositionY int       `json:"position_y"`
	Rotation  int       `json:"rotation"`
	GridCols  int       `json:"grid_cols"`
	GridRows  int       `json:"grid_rows"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toClusterResponse(cl *cluster.Cluster) ClusterResponse {
	return ClusterResponse{
		ID: cl.ID, Label: cl.Label,
		PositionX: cl.PositionX, PositionY: cl.PositionY,
		Rotation: cl.Rotation, GridCols: cl.GridCols, GridRows: cl.GridRows,
		Capacity:  cl.Capacity(),
		CreatedAt: cl.CreatedAt, UpdatedAt: cl.UpdatedAt,
	}
}

func (h *ClusterHandler) List(c echo.Context) error {
	clusters, err := h.service.ListClusters(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]ClusterResponse, len(clusters))
	for i, cl := range clusters {
		resp[i] = toClusterResponse(cl)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ClusterHandler) GetByID(c echo.Context) error {
	cl, err := h.service.GetCluster(c.Request().Context(), c.Param("id"))
	if err != nil {
		return clusterErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, toClusterResponse(cl))
}

// Create は座席島を作成する（管理者）
func (h *ClusterHandler) Create(c echo.Context) error {
	var req CreateClusterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	cl, err := h.service.CreateCluster(c.Request().Context(), application.CreateClusterInput{
		Label: req.Label, PositionX: req.PositionX, PositionY: req.PositionY,
		Rotation: req.Rotation, GridCols: req.GridCols, GridRows: req.GridRows,
	})
	if err != nil {
		return clusterErrorToHTTP(err)
	}
	return c.JSON(http.StatusCreated, toClusterResponse(cl))
}

// Update は座席島を部分更新する（管理者）
func (h *ClusterHandler) Update(c echo.Context) error {
	var req UpdateClusterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	cl, err := h.service.UpdateCluster(c.Request().Context(), application.UpdateClusterInput{
		ID:    c.Param("id"),
		Label: req.Label, PositionX: req.PositionX, PositionY: req.PositionY,
		Rotation: req.Rotation, GridCols: req.GridCols, GridRows: req.GridRows,
	})
	if err != nil {
		return clusterErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, toClusterResponse(cl))
}

// Delete は座席島を削除する（管理者、所属座席が残っている場合は拒否）
func (h *ClusterHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteCluster(c.Request().Context(), c.Param("id")); err != nil {
		return clusterErrorToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func clusterErrorToHTTP(err error) error {
	switch {
	case errors.Is(err, cluster.ErrClusterNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, cluster.ErrClusterInUse), errors.Is(err, cluster.ErrClusterFull):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, cluster.ErrInvalidRotation),
		errors.Is(err, cluster.ErrInvalidGrid),
		errors.Is(err, cluster.ErrGridTooDeep):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
