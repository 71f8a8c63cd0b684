package ports

import (
	"context"

	"github.com/accesshub/identity-service/internal/core/domain"
)

// UserFilter carries the typed query parameters for listing users.
type UserFilter struct {
	Search string // optional: substring of firstName, lastName, email or username
	Active *bool
	Page   int
	Limit  int
}

// UserSelector selects the users a homogeneous batch applies to. The zero
// value selects every user.
type UserSelector struct {
	Search string
	Active *bool
	RoleID string
	IDs    []string
}

// UserUpdate is one element of a heterogeneous batch write.
type UserUpdate struct {
	ID      string
	Changes domain.UserChanges
}

// BatchResult reports the outcome of a batch write.
type BatchResult struct {
	Matched  int64
	Modified int64
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByLogin matches email or username case-insensitively.
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, int64, error)
	Update(ctx context.Context, id string, changes domain.UserChanges) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, roleID string) (int64, error)
	// FieldTaken reports a case-insensitive full match of value on field
	// (email or username), ignoring excludeID.
	FieldTaken(ctx context.Context, field, value, excludeID string) (bool, error)
	UpdateMany(ctx context.Context, selector UserSelector, changes domain.UserChanges) (BatchResult, error)
	// BulkUpdate submits all updates as one ordered batch.
	BulkUpdate(ctx context.Context, updates []UserUpdate) (BatchResult, error)
}
