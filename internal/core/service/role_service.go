package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
	"github.com/accesshub/identity-service/internal/core/validation"
)

type RoleService struct {
	repo   ports.RoleRepository
	unique *UniquenessResolver
	refs   *RoleReferenceChecker
	cache  ports.RoleCache
	audit  ports.AuditRecorder
	logger zerolog.Logger
}

func NewRoleService(
	roles ports.RoleRepository,
	users ports.UserRepository,
	cache ports.RoleCache,
	audit ports.AuditRecorder,
	logger zerolog.Logger,
) *RoleService {
	return &RoleService{
		repo:   roles,
		unique: NewUniquenessResolver(users, roles),
		refs:   NewRoleReferenceChecker(roles, users),
		cache:  cache,
		audit:  auditOrNop(audit),
		logger: logger,
	}
}

// CreateRole validates and stores a new role with a deduplicated module set.
func (s *RoleService) CreateRole(ctx context.Context, in ports.RoleInput) (*domain.Role, error) {
	if err := validation.RoleCreate(in); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name.Value)
	if err := s.unique.Ensure(ctx, domain.EntityRole, domain.FieldRoleName, name, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	role := &domain.Role{
		Name:          name,
		AccessModules: normalizeModules(in.AccessModules.Value),
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Active.Present() {
		role.Active = in.Active.Value
	}

	created, err := s.repo.Create(ctx, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("role_id", created.ID).Str("name", created.Name).Msg("role created")
	s.audit.Record(newAuditEvent(domain.EntityRole, created.ID, domain.AuditCreated, nil))
	return created, nil
}

func (s *RoleService) ListRoles(ctx context.Context, in ports.ListInput) (*ports.RoleList, error) {
	roles, total, err := s.repo.List(ctx, ports.RoleFilter{
		Search: in.Search,
		Active: in.Active,
		Page:   in.Page,
		Limit:  in.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &ports.RoleList{
		Items: roles,
		Pagination: ports.Pagination{
			Page:  in.Page,
			Limit: in.Limit,
			Total: total,
			Pages: pages(total, in.Limit),
		},
	}, nil
}

func (s *RoleService) GetRole(ctx context.Context, id string) (*domain.Role, error) {
	if err := validation.ID("role", id); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// UpdateRole applies a partial update. The name is re-checked for uniqueness
// only when it changes. An update with no fields returns the stored role.
func (s *RoleService) UpdateRole(ctx context.Context, id string, in ports.RoleInput) (*domain.Role, error) {
	if err := validation.ID("role", id); err != nil {
		return nil, err
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validation.RoleUpdate(in); err != nil {
		return nil, err
	}

	var changes domain.RoleChanges
	var fields []string
	if in.Name.Present() {
		name := strings.TrimSpace(in.Name.Value)
		if name != current.Name {
			if err := s.unique.Ensure(ctx, domain.EntityRole, domain.FieldRoleName, name, id); err != nil {
				return nil, err
			}
		}
		changes.Name = &name
		fields = append(fields, domain.FieldRoleName)
	}
	if in.AccessModules.Present() {
		changes.AccessModules = normalizeModules(in.AccessModules.Value)
		fields = append(fields, domain.FieldAccessModules)
	}
	if in.Active.Present() {
		active := in.Active.Value
		changes.Active = &active
		fields = append(fields, domain.FieldActive)
	}
	if len(fields) == 0 {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, updated)

	s.logger.Info().Str("role_id", id).Strs("fields", fields).Msg("role updated")
	s.audit.Record(newAuditEvent(domain.EntityRole, id, domain.AuditUpdated, fields))
	return updated, nil
}

// DeleteRole removes a role no user references. The count and the delete are
// separate store calls, so a user created in between can still end up
// pointing at a deleted role.
func (s *RoleService) DeleteRole(ctx context.Context, id string) error {
	if err := validation.ID("role", id); err != nil {
		return err
	}

	n, err := s.refs.CountUsersReferencing(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrRoleInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)

	s.logger.Info().Str("role_id", id).Msg("role deleted")
	s.audit.Record(newAuditEvent(domain.EntityRole, id, domain.AuditDeleted, nil))
	return nil
}

// refresh writes the updated role over any cached copy. When that fails the
// key is dropped instead.
func (s *RoleService) refresh(ctx context.Context, role *domain.Role) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, role); err != nil {
		s.logger.Warn().Err(err).Str("role_id", role.ID).Msg("failed to refresh cached role")
		s.invalidate(ctx, role.ID)
	}
}

func (s *RoleService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("role_id", id).Msg("failed to invalidate cached role")
	}
}
