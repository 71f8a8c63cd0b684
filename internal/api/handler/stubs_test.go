package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
)

const (
	roleID = "64b000000000000000000001"
	userID = "64b000000000000000000002"
)

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type stubRoleService struct {
	role    *domain.Role
	err     error
	lastIn  ports.RoleInput
	lastID  string
	lastLst ports.ListInput
}

func (s *stubRoleService) CreateRole(_ context.Context, in ports.RoleInput) (*domain.Role, error) {
	s.lastIn = in
	return s.role, s.err
}

func (s *stubRoleService) ListRoles(_ context.Context, in ports.ListInput) (*ports.RoleList, error) {
	s.lastLst = in
	if s.err != nil {
		return nil, s.err
	}
	return &ports.RoleList{
		Items:      []*domain.Role{s.role},
		Pagination: ports.Pagination{Page: in.Page, Limit: in.Limit, Total: 1, Pages: 1},
	}, nil
}

func (s *stubRoleService) GetRole(_ context.Context, id string) (*domain.Role, error) {
	s.lastID = id
	return s.role, s.err
}

func (s *stubRoleService) UpdateRole(_ context.Context, id string, in ports.RoleInput) (*domain.Role, error) {
	s.lastID, s.lastIn = id, in
	return s.role, s.err
}

func (s *stubRoleService) DeleteRole(_ context.Context, id string) error {
	s.lastID = id
	return s.err
}

type stubUserService struct {
	detail  *ports.UserDetail
	session *ports.SessionResult
	err     error
	lastIn  ports.UserInput
	login   [2]string
}

func (s *stubUserService) Signup(_ context.Context, in ports.UserInput) (*ports.SessionResult, error) {
	s.lastIn = in
	return s.session, s.err
}

func (s *stubUserService) Login(_ context.Context, login, password string) (*ports.SessionResult, error) {
	s.login = [2]string{login, password}
	return s.session, s.err
}

func (s *stubUserService) ListUsers(_ context.Context, in ports.ListInput) (*ports.UserList, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.UserList{
		Items:      []ports.UserDetail{*s.detail},
		Pagination: ports.Pagination{Page: in.Page, Limit: in.Limit, Total: 1, Pages: 1},
	}, nil
}

func (s *stubUserService) GetUser(context.Context, string) (*ports.UserDetail, error) {
	return s.detail, s.err
}

func (s *stubUserService) UpdateUser(_ context.Context, _ string, in ports.UserInput) (*ports.UserDetail, error) {
	s.lastIn = in
	return s.detail, s.err
}

func (s *stubUserService) DeleteUser(context.Context, string) error { return s.err }

type stubAccessService struct {
	decision *domain.AccessDecision
	err      error
	userID   string
	module   string
}

func (s *stubAccessService) CheckAccess(_ context.Context, userID, module string) (*domain.AccessDecision, error) {
	s.userID, s.module = userID, module
	return s.decision, s.err
}

type stubBulkService struct {
	res      ports.BatchResult
	err      error
	lastIn   ports.UserInput
	lastSel  ports.UserSelector
	lastList []ports.BulkUpdateItem
}

func (s *stubBulkService) ApplySameUpdateToMany(_ context.Context, in ports.UserInput, sel ports.UserSelector) (ports.BatchResult, error) {
	s.lastIn, s.lastSel = in, sel
	return s.res, s.err
}

func (s *stubBulkService) ApplyDifferentUpdatesToMany(_ context.Context, items []ports.BulkUpdateItem) (ports.BatchResult, error) {
	s.lastList = items
	return s.res, s.err
}

func sampleRole() *domain.Role {
	return &domain.Role{ID: roleID, Name: "Editor", AccessModules: []string{"reports"}, Active: true}
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:             userID,
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Email:          "ada@example.com",
		Username:       "ada",
		PasswordDigest: "digest",
		RoleID:         roleID,
		Active:         true,
	}
}
