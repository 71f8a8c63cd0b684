package ports

import (
	"context"

	"github.com/accesshub/identity-service/internal/core/domain"
)

// RoleFilter carries the typed query parameters for listing roles.
type RoleFilter struct {
	Search string // optional: case-insensitive substring of name
	Active *bool  // optional
	Page   int    // 1-based
	Limit  int
}

// RoleRepository defines persistence operations for roles.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	// FindByIDs returns the roles that exist, keyed by id. Missing ids are omitted.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Role, error)
	List(ctx context.Context, filter RoleFilter) ([]*domain.Role, int64, error)
	Update(ctx context.Context, id string, changes domain.RoleChanges) (*domain.Role, error)
	Delete(ctx context.Context, id string) error
	// NameTaken reports a case-insensitive full match on name, ignoring excludeID.
	NameTaken(ctx context.Context, name, excludeID string) (bool, error)
}
