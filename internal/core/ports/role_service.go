package ports

import (
	"context"

	"github.com/accesshub/identity-service/internal/core/domain"
)

// RoleInput is a role payload. On create, Name is required; on update every
// field is optional.
type RoleInput struct {
	Name          domain.Field[string]
	AccessModules domain.Field[[]string]
	Active        domain.Field[bool]
}

// ListInput carries already-validated list parameters.
type ListInput struct {
	Search string
	Active *bool
	Page   int
	Limit  int
}

// Pagination is returned alongside every list page.
type Pagination struct {
	Page  int
	Limit int
	Total int64
	Pages int
}

// RoleList is returned by ListRoles.
type RoleList struct {
	Items      []*domain.Role
	Pagination Pagination
}

// RoleService defines use-case operations for roles.
type RoleService interface {
	CreateRole(ctx context.Context, input RoleInput) (*domain.Role, error)
	ListRoles(ctx context.Context, input ListInput) (*RoleList, error)
	GetRole(ctx context.Context, id string) (*domain.Role, error)
	UpdateRole(ctx context.Context, id string, input RoleInput) (*domain.Role, error)
	DeleteRole(ctx context.Context, id string) error
}
