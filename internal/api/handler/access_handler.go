package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accesshub/identity-service/internal/api/metrics"
	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
)

// AccessHandler answers module access checks.
type AccessHandler struct {
	service ports.AccessService
}

func NewAccessHandler(service ports.AccessService) *AccessHandler {
	return &AccessHandler{service: service}
}

// Check handles GET and POST /v1/api/user/access-check. userId and module are
// read from the JSON body when present, otherwise from the query string.
//
// @Summary      Check module access
// @Description  An inactive account is denied regardless of its role.
// @Tags         access
// @Accept       json
// @Produce      json
// @Param        userId  query     string              false  "User id"
// @Param        module  query     string              false  "Access module name"
// @Param        body    body      accessCheckRequest  false  "userId and module"
// @Success      200     {object}  accessResponse
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  accessResponse
// @Failure      404     {object}  errorResponse
// @Failure      500     {object}  errorResponse
// @Router       /v1/api/user/access-check [get]
// @Router       /v1/api/user/access-check [post]
func (h *AccessHandler) Check(c echo.Context) error {
	var req accessCheckRequest
	if c.Request().Method == http.MethodPost {
		if err := c.Bind(&req); err != nil {
			return err
		}
	}
	if req.UserID == "" {
		req.UserID = c.QueryParam("userId")
	}
	if req.Module == "" {
		req.Module = c.QueryParam("module")
	}

	decision, err := h.service.CheckAccess(c.Request().Context(), req.UserID, req.Module)
	if err != nil {
		if decision == nil {
			metrics.AccessChecksTotal.WithLabelValues("error").Inc()
			return err
		}
		metrics.AccessChecksTotal.WithLabelValues(string(decision.Reason)).Inc()
		return c.JSON(http.StatusForbidden, accessResponse{
			Error:     denialMessage(err),
			UserID:    decision.UserID,
			Module:    decision.Module,
			HasAccess: false,
			Reason:    string(decision.Reason),
		})
	}

	metrics.AccessChecksTotal.WithLabelValues(string(decision.Reason)).Inc()
	return c.JSON(http.StatusOK, accessResponse{
		Message:   "User has access to the module",
		UserID:    decision.UserID,
		Module:    decision.Module,
		HasAccess: true,
		Reason:    string(decision.Reason),
	})
}

func denialMessage(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
