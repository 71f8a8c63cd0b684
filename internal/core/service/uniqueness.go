package service

import (
	"context"
	"fmt"

	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
)

// UniquenessResolver detects case-insensitive collisions on user email and
// username and on role name. The check is not transactional: two writers can
// both pass it, and the store's unique indexes then reject the second write
// with the same duplicate error.
type UniquenessResolver struct {
	users ports.UserRepository
	roles ports.RoleRepository
}

func NewUniquenessResolver(users ports.UserRepository, roles ports.RoleRepository) *UniquenessResolver {
	return &UniquenessResolver{users: users, roles: roles}
}

// CheckUnique reports whether value collides with another record's field.
// excludeID is empty on creation.
func (r *UniquenessResolver) CheckUnique(ctx context.Context, entity, field, value, excludeID string) (bool, error) {
	switch entity {
	case domain.EntityUser:
		return r.users.FieldTaken(ctx, field, value, excludeID)
	case domain.EntityRole:
		return r.roles.NameTaken(ctx, value, excludeID)
	default:
		return false, fmt.Errorf("check unique: unknown entity %q", entity)
	}
}

// Ensure returns a duplicate error naming field when value collides.
func (r *UniquenessResolver) Ensure(ctx context.Context, entity, field, value, excludeID string) error {
	taken, err := r.CheckUnique(ctx, entity, field, value, excludeID)
	if err != nil {
		return fmt.Errorf("check unique %s: %w", field, err)
	}
	if taken {
		return domain.Duplicate(field)
	}
	return nil
}
