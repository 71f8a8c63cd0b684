package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accesshub/identity-service/internal/api/metrics"
	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
)

// BulkHandler handles batch user updates.
type BulkHandler struct {
	service ports.BulkService
}

func NewBulkHandler(service ports.BulkService) *BulkHandler {
	return &BulkHandler{service: service}
}

// UpdateSame handles PUT /v1/api/user/bulk-update-same.
//
// @Summary      Apply one update to many users
// @Description  email and username cannot be set in a bulk update. An empty filter matches every user.
// @Tags         bulk
// @Accept       json
// @Produce      json
// @Param        body  body      bulkSameRequest  true  "Update payload and typed filter"
// @Success      200   {object}  bulkResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/api/user/bulk-update-same [put]
func (h *BulkHandler) UpdateSame(c echo.Context) error {
	var req bulkSameRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	res, err := h.service.ApplySameUpdateToMany(c.Request().Context(), toUserInput(req.Updates), toSelector(req.Filter))
	if err != nil {
		metrics.BulkUpdatesTotal.WithLabelValues("same", string(domain.KindOf(err))).Inc()
		return err
	}

	metrics.BulkUpdatesTotal.WithLabelValues("same", "applied").Inc()
	metrics.BulkUsersModifiedTotal.WithLabelValues("same").Add(float64(res.Modified))
	return c.JSON(http.StatusOK, toBulkResponse(res))
}

// UpdateDifferent handles PUT /v1/api/user/bulk-update-different. Every
// element is checked before anything is written; one failure aborts the batch.
//
// @Summary      Apply a distinct update to each listed user
// @Tags         bulk
// @Accept       json
// @Produce      json
// @Param        body  body      bulkDifferentRequest  true  "One {userId, data} per user"
// @Success      200   {object}  bulkResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/api/user/bulk-update-different [put]
func (h *BulkHandler) UpdateDifferent(c echo.Context) error {
	var req bulkDifferentRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	res, err := h.service.ApplyDifferentUpdatesToMany(c.Request().Context(), toBulkItems(req.Updates))
	if err != nil {
		metrics.BulkUpdatesTotal.WithLabelValues("different", string(domain.KindOf(err))).Inc()
		return err
	}

	metrics.BulkUpdatesTotal.WithLabelValues("different", "applied").Inc()
	metrics.BulkUsersModifiedTotal.WithLabelValues("different").Add(float64(res.Modified))
	return c.JSON(http.StatusOK, toBulkResponse(res))
}

func toBulkResponse(res ports.BatchResult) bulkResponse {
	return bulkResponse{
		Message:       "Users updated successfully",
		MatchedCount:  res.Matched,
		ModifiedCount: res.Modified,
	}
}
