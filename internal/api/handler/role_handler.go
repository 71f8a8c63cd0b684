package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accesshub/identity-service/internal/core/ports"
	"github.com/accesshub/identity-service/internal/core/validation"
)

// RoleHandler handles HTTP requests for role operations.
type RoleHandler struct {
	service ports.RoleService
}

func NewRoleHandler(service ports.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// Create handles POST /v1/api/roles/create.
//
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        body  body      roleRequest  true  "Role name, access modules and active flag"
// @Success      201   {object}  roleEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/api/roles/create [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	role, err := h.service.CreateRole(c.Request().Context(), toRoleInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, roleEnvelope{Message: "Role created successfully", Role: toRoleResponse(role)})
}

// List handles GET /v1/api/roles/list.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Param        search  query     string  false  "Case-insensitive substring of the role name"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 10, max 100)"
// @Param        active  query     bool    false  "Filter by active flag"
// @Success      200     {object}  listRolesResponse
// @Failure      400     {object}  errorResponse
// @Failure      500     {object}  errorResponse
// @Router       /v1/api/roles/list [get]
func (h *RoleHandler) List(c echo.Context) error {
	var q listQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return err
	}
	in, err := validation.ListParams(q.Search, q.Page, q.Limit, q.Active)
	if err != nil {
		return err
	}

	list, err := h.service.ListRoles(c.Request().Context(), in)
	if err != nil {
		return err
	}

	resp := listRolesResponse{
		Roles:      make([]roleResponse, 0, len(list.Items)),
		Pagination: toPagination(list.Pagination),
	}
	for _, r := range list.Items {
		resp.Roles = append(resp.Roles, toRoleResponse(r))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /v1/api/roles/get-role/:id.
//
// @Summary      Get a role by id
// @Tags         roles
// @Produce      json
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  roleResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/api/roles/get-role/{id} [get]
func (h *RoleHandler) Get(c echo.Context) error {
	role, err := h.service.GetRole(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleResponse(role))
}

// Update handles PUT /v1/api/roles/update-role/:id. Only the fields present
// in the body are changed.
//
// @Summary      Update a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Role id"
// @Param        body  body      roleRequest  true  "Fields to change"
// @Success      200   {object}  roleEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/api/roles/update-role/{id} [put]
func (h *RoleHandler) Update(c echo.Context) error {
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	role, err := h.service.UpdateRole(c.Request().Context(), c.Param("id"), toRoleInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleEnvelope{Message: "Role updated successfully", Role: toRoleResponse(role)})
}

// Delete handles DELETE /v1/api/roles/delete-role/:id.
//
// @Summary      Delete a role
// @Description  Fails with 409 while any user is assigned the role.
// @Tags         roles
// @Produce      json
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/api/roles/delete-role/{id} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteRole(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Role deleted successfully"})
}
