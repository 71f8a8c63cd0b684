package ports

import (
	"context"

	"github.com/accesshub/identity-service/internal/core/domain"
)

// UserInput is a user payload. Signup requires every field except
// PhoneNumber and Active; updates treat every field as optional.
type UserInput struct {
	FirstName   domain.Field[string]
	LastName    domain.Field[string]
	Email       domain.Field[string]
	Username    domain.Field[string]
	Password    domain.Field[string]
	PhoneNumber domain.Field[string]
	Role        domain.Field[string]
	Active      domain.Field[bool]
}

// UserDetail is a user with its role expanded. Role is nil when the
// referenced role no longer resolves.
type UserDetail struct {
	User *domain.User
	Role *domain.Role
}

// SessionResult is returned by Signup and Login.
type SessionResult struct {
	User  *domain.User
	Token string
}

// UserList is returned by ListUsers.
type UserList struct {
	Items      []UserDetail
	Pagination Pagination
}

// UserService defines use-case operations for single users.
type UserService interface {
	Signup(ctx context.Context, input UserInput) (*SessionResult, error)
	Login(ctx context.Context, login, password string) (*SessionResult, error)
	ListUsers(ctx context.Context, input ListInput) (*UserList, error)
	GetUser(ctx context.Context, id string) (*UserDetail, error)
	UpdateUser(ctx context.Context, id string, input UserInput) (*UserDetail, error)
	DeleteUser(ctx context.Context, id string) error
}

// BulkUpdateItem is one element of a heterogeneous batch.
type BulkUpdateItem struct {
	UserID string
	Data   UserInput
}

// BulkService applies updates to many users at once.
type BulkService interface {
	ApplySameUpdateToMany(ctx context.Context, input UserInput, selector UserSelector) (BatchResult, error)
	ApplyDifferentUpdatesToMany(ctx context.Context, items []BulkUpdateItem) (BatchResult, error)
}

// AccessService evaluates module access. Denials return both the decision
// and an inactive-account or no-access error.
type AccessService interface {
	CheckAccess(ctx context.Context, userID, module string) (*domain.AccessDecision, error)
}
