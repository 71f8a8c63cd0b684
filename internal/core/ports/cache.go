package ports

import (
	"context"

	"github.com/accesshub/identity-service/internal/core/domain"
)

// RoleCache is a read-through cache for roles consulted by access checks.
// A miss returns (nil, false, nil). Readers fill a missed key with Fill,
// which never replaces an existing entry; writers that hold the current
// role overwrite it with Set.
type RoleCache interface {
	Get(ctx context.Context, id string) (*domain.Role, bool, error)
	Fill(ctx context.Context, role *domain.Role) error
	Set(ctx context.Context, role *domain.Role) error
	Invalidate(ctx context.Context, id string) error
}
