package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
	"github.com/accesshub/identity-service/internal/core/validation"
)

// UserService implements account registration, login and single-user
// mutations.
type UserService struct {
	users   ports.UserRepository
	roles   ports.RoleRepository
	tokens  ports.TokenIssuer
	hasher  ports.PasswordHasher
	mutator *userMutator
	audit   ports.AuditRecorder
	log     zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users:  users,
		roles:  roles,
		tokens: tokens,
		hasher: hasher,
		mutator: &userMutator{
			unique: NewUniquenessResolver(users, roles),
			refs:   NewRoleReferenceChecker(roles, users),
			hasher: hasher,
		},
		audit: auditOrNop(audit),
		log:   log,
	}
}

// Signup creates an active account and issues a session token for it.
func (s *UserService) Signup(ctx context.Context, in ports.UserInput) (*ports.SessionResult, error) {
	if err := validation.Signup(in); err != nil {
		return nil, err
	}
	if err := s.mutator.refs.EnsureRole(ctx, in.Role.Value); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(in.Email.Value)
	username := strings.TrimSpace(in.Username.Value)
	if err := s.mutator.unique.Ensure(ctx, domain.EntityUser, domain.FieldEmail, email, ""); err != nil {
		return nil, err
	}
	if err := s.mutator.unique.Ensure(ctx, domain.EntityUser, domain.FieldUsername, username, ""); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(in.Password.Value)
	if err != nil {
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		FirstName:      strings.TrimSpace(in.FirstName.Value),
		LastName:       strings.TrimSpace(in.LastName.Value),
		Email:          email,
		Username:       username,
		PasswordDigest: digest,
		RoleID:         in.Role.Value,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.PhoneNumber.Present() {
		user.PhoneNumber = strings.TrimSpace(in.PhoneNumber.Value)
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return nil, fmt.Errorf("signup: issue token: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user signed up")
	s.audit.Record(newAuditEvent(domain.EntityUser, created.ID, domain.AuditCreated, nil))
	return &ports.SessionResult{User: created, Token: token}, nil
}

// Login accepts an email or username. Unknown logins and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, login, password string) (*ports.SessionResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordDigest) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrAccountInactive
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}
	s.log.Debug().Str("user_id", user.ID).Msg("user logged in")
	return &ports.SessionResult{User: user, Token: token}, nil
}

func (s *UserService) ListUsers(ctx context.Context, in ports.ListInput) (*ports.UserList, error) {
	users, total, err := s.users.List(ctx, ports.UserFilter{
		Search: in.Search,
		Active: in.Active,
		Page:   in.Page,
		Limit:  in.Limit,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.RoleID)
	}
	roles, err := s.roles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list users: expand roles: %w", err)
	}

	items := make([]ports.UserDetail, 0, len(users))
	for _, u := range users {
		items = append(items, ports.UserDetail{User: u, Role: roles[u.RoleID]})
	}
	return &ports.UserList{
		Items: items,
		Pagination: ports.Pagination{
			Page:  in.Page,
			Limit: in.Limit,
			Total: total,
			Pages: pages(total, in.Limit),
		},
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*ports.UserDetail, error) {
	if err := validation.ID("user", id); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, user)
}

// UpdateUser applies a partial update in a single write. An update that
// touches nothing returns the stored user unchanged.
func (s *UserService) UpdateUser(ctx context.Context, id string, in ports.UserInput) (*ports.UserDetail, error) {
	if err := validation.ID("user", id); err != nil {
		return nil, err
	}
	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validation.UserUpdate(in); err != nil {
		return nil, err
	}

	changes, err := s.mutator.resolve(ctx, current, in)
	if err != nil {
		return nil, err
	}
	if changes.Empty() {
		return s.detail(ctx, current)
	}

	updated, err := s.users.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	fields := changedFields(changes)
	s.log.Info().Str("user_id", id).Strs("fields", fields).Msg("user updated")
	s.audit.Record(newAuditEvent(domain.EntityUser, id, domain.AuditUpdated, fields))
	return s.detail(ctx, updated)
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := validation.ID("user", id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Msg("user deleted")
	s.audit.Record(newAuditEvent(domain.EntityUser, id, domain.AuditDeleted, nil))
	return nil
}

// detail expands the user's role. A dangling reference leaves Role nil.
func (s *UserService) detail(ctx context.Context, user *domain.User) (*ports.UserDetail, error) {
	role, err := s.roles.FindByID(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrBadID) {
			return &ports.UserDetail{User: user}, nil
		}
		return nil, fmt.Errorf("expand role: %w", err)
	}
	return &ports.UserDetail{User: user, Role: role}, nil
}
