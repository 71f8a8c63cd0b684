package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
)

// RoleReferenceChecker guards the user→role reference: a role must exist when
// it is assigned, and may not be deleted while users point at it.
type RoleReferenceChecker struct {
	roles ports.RoleRepository
	users ports.UserRepository
}

func NewRoleReferenceChecker(roles ports.RoleRepository, users ports.UserRepository) *RoleReferenceChecker {
	return &RoleReferenceChecker{roles: roles, users: users}
}

func (c *RoleReferenceChecker) RoleExists(ctx context.Context, roleID string) (bool, error) {
	if _, err := c.roles.FindByID(ctx, roleID); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrBadID) {
			return false, nil
		}
		return false, fmt.Errorf("role exists: %w", err)
	}
	return true, nil
}

// EnsureRole returns ErrRoleMissing when roleID does not resolve.
func (c *RoleReferenceChecker) EnsureRole(ctx context.Context, roleID string) error {
	ok, err := c.RoleExists(ctx, roleID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrRoleMissing
	}
	return nil
}

func (c *RoleReferenceChecker) CountUsersReferencing(ctx context.Context, roleID string) (int64, error) {
	n, err := c.users.CountByRole(ctx, roleID)
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return n, nil
}
