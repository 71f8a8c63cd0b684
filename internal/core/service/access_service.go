package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
	"github.com/accesshub/identity-service/internal/core/validation"
)

// AccessEvaluator answers whether a user may use a module. Roles are read
// through the cache when one is configured.
type AccessEvaluator struct {
	users ports.UserRepository
	roles ports.RoleRepository
	cache ports.RoleCache
	log   zerolog.Logger
}

func NewAccessEvaluator(users ports.UserRepository, roles ports.RoleRepository, cache ports.RoleCache, log zerolog.Logger) *AccessEvaluator {
	return &AccessEvaluator{users: users, roles: roles, cache: cache, log: log}
}

// CheckAccess evaluates in a fixed order: input shape, user lookup, account
// status, then role membership. An inactive account is denied whatever its
// role grants. Denials return the decision together with the error.
func (e *AccessEvaluator) CheckAccess(ctx context.Context, userID, module string) (*domain.AccessDecision, error) {
	if err := validation.ID("user", userID); err != nil {
		return nil, err
	}
	if err := validation.Module(module); err != nil {
		return nil, err
	}

	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	decision := &domain.AccessDecision{UserID: userID, Module: module}
	if !user.Active {
		decision.Reason = domain.ReasonInactiveAccount
		return decision, domain.ErrAccountInactive
	}

	role, err := e.role(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	if !role.Grants(module) {
		decision.Reason = domain.ReasonNoAccess
		return decision, domain.ErrModuleDenied
	}

	decision.Allowed = true
	decision.Reason = domain.ReasonGranted
	return decision, nil
}

// role resolves a role id, returning nil without error when it no longer
// exists.
func (e *AccessEvaluator) role(ctx context.Context, id string) (*domain.Role, error) {
	if e.cache != nil {
		role, ok, err := e.cache.Get(ctx, id)
		if err != nil {
			e.log.Warn().Err(err).Str("role_id", id).Msg("role cache read failed, falling back to store")
		} else if ok {
			return role, nil
		}
	}

	role, err := e.roles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrBadID) {
			return nil, nil
		}
		return nil, fmt.Errorf("check access: load role: %w", err)
	}

	if e.cache != nil {
		if err := e.cache.Fill(ctx, role); err != nil {
			e.log.Warn().Err(err).Str("role_id", id).Msg("role cache write failed")
		}
	}
	return role, nil
}
