package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accesshub/identity-service/internal/core/ports"
	"github.com/accesshub/identity-service/internal/core/validation"
)

// UserHandler handles HTTP requests for single-user operations.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Signup creates a new account and returns a session token.
//
// @Summary      Sign up
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      userRequest  true  "Account details; phoneNumber is optional"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/api/user/signup [post]
func (h *UserHandler) Signup(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	res, err := h.service.Signup(c.Request().Context(), toUserInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sessionResponse{
		Message: "User created successfully",
		User:    toAccountResponse(res.User),
		Token:   res.Token,
	})
}

// Login authenticates by email or username and returns a session token.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Email or username, and password"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/api/user/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.service.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{
		Message: "Login successful",
		User:    toAccountResponse(res.User),
		Token:   res.Token,
	})
}

// List handles GET /v1/api/user/list.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        search  query     string  false  "Substring of first name, last name, email or username"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 10, max 100)"
// @Param        active  query     bool    false  "Filter by active flag"
// @Success      200     {object}  listUsersResponse
// @Failure      400     {object}  errorResponse
// @Failure      500     {object}  errorResponse
// @Router       /v1/api/user/list [get]
func (h *UserHandler) List(c echo.Context) error {
	var q listQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return err
	}
	in, err := validation.ListParams(q.Search, q.Page, q.Limit, q.Active)
	if err != nil {
		return err
	}

	list, err := h.service.ListUsers(c.Request().Context(), in)
	if err != nil {
		return err
	}

	resp := listUsersResponse{
		Users:      make([]userResponse, 0, len(list.Items)),
		Pagination: toPagination(list.Pagination),
	}
	for _, d := range list.Items {
		resp.Users = append(resp.Users, toUserResponse(d))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /v1/api/user/get-user/:id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userEnvelope
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/api/user/get-user/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	detail, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(*detail)})
}

// Update handles PUT /v1/api/user/update-user/:id. phoneNumber may be sent
// as null to clear it.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "User id"
// @Param        body  body      userRequest  true  "Fields to change"
// @Success      200   {object}  userEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/api/user/update-user/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	detail, err := h.service.UpdateUser(c.Request().Context(), c.Param("id"), toUserInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{Message: "User updated successfully", User: toUserResponse(*detail)})
}

// Delete handles DELETE /v1/api/user/delete-user/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/api/user/delete-user/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
