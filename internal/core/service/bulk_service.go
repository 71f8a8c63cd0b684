package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
	"github.com/accesshub/identity-service/internal/core/validation"
)

// DefaultBulkConcurrency bounds how many batch elements are checked at once.
const DefaultBulkConcurrency = 8

// BulkCoordinator applies one update to a filtered set of users, or a distinct
// update to each listed user.
type BulkCoordinator struct {
	users       ports.UserRepository
	mutator     *userMutator
	audit       ports.AuditRecorder
	concurrency int
	log         zerolog.Logger
}

func NewBulkCoordinator(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher ports.PasswordHasher,
	audit ports.AuditRecorder,
	concurrency int,
	log zerolog.Logger,
) *BulkCoordinator {
	if concurrency <= 0 {
		concurrency = DefaultBulkConcurrency
	}
	return &BulkCoordinator{
		users: users,
		mutator: &userMutator{
			unique: NewUniquenessResolver(users, roles),
			refs:   NewRoleReferenceChecker(roles, users),
			hasher: hasher,
		},
		audit:       auditOrNop(audit),
		concurrency: concurrency,
		log:         log,
	}
}

// ApplySameUpdateToMany validates the patch once, hashes a password once,
// checks the role once, and issues a single multi-document update.
func (c *BulkCoordinator) ApplySameUpdateToMany(ctx context.Context, in ports.UserInput, sel ports.UserSelector) (ports.BatchResult, error) {
	if err := validation.SameUpdate(in); err != nil {
		return ports.BatchResult{}, err
	}
	if err := validateSelector(sel); err != nil {
		return ports.BatchResult{}, err
	}

	changes, err := c.mutator.resolve(ctx, nil, in)
	if err != nil {
		return ports.BatchResult{}, err
	}

	res, err := c.users.UpdateMany(ctx, sel, changes)
	if err != nil {
		return ports.BatchResult{}, fmt.Errorf("bulk update: %w", err)
	}

	fields := changedFields(changes)
	c.log.Info().
		Strs("fields", fields).
		Int64("matched", res.Matched).
		Int64("modified", res.Modified).
		Msg("bulk update applied")

	ev := newAuditEvent(domain.EntityUser, "", domain.AuditBulkUpdated, fields)
	ev.Matched, ev.Modified = res.Matched, res.Modified
	c.audit.Record(ev)
	return res, nil
}

func validateSelector(sel ports.UserSelector) error {
	if sel.RoleID != "" && !validation.IsID(sel.RoleID) {
		return domain.BadInput(domain.FieldRole, "invalid role ID format")
	}
	for _, id := range sel.IDs {
		if !validation.IsID(id) {
			return domain.BadID(domain.FieldID, "invalid user ID format").WithRef(id)
		}
	}
	return nil
}

// ApplyDifferentUpdatesToMany checks every element before writing anything.
// Elements are checked concurrently; when several fail, the one with the
// lowest index is reported, bound to its user id. A store failure cancels
// the remaining checks and is reported only when no checked element was
// rejected.
func (c *BulkCoordinator) ApplyDifferentUpdatesToMany(ctx context.Context, items []ports.BulkUpdateItem) (ports.BatchResult, error) {
	if len(items) == 0 {
		return ports.BatchResult{}, domain.BadInput("updates", "updates must be a non-empty array")
	}

	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.UserID]; dup && it.UserID != "" {
			return ports.BatchResult{}, domain.BadInput(domain.FieldUserID, "duplicate userId in batch").WithRef(it.UserID)
		}
		seen[it.UserID] = struct{}{}
	}

	ops := make([]ports.UserUpdate, len(items))
	failures := make([]error, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, it := range items {
		g.Go(func() error {
			op, err := c.prepare(gctx, it)
			if err == nil {
				ops[i] = op
				return nil
			}
			if domain.KindOf(err) == domain.KindInternal {
				return withRef(err, it.UserID)
			}
			failures[i] = withRef(err, it.UserID)
			return nil
		})
	}
	waitErr := g.Wait()
	for _, err := range failures {
		if err != nil {
			return ports.BatchResult{}, err
		}
	}
	if waitErr != nil {
		return ports.BatchResult{}, fmt.Errorf("bulk update: %w", waitErr)
	}
	if err := claimsDistinct(ops); err != nil {
		return ports.BatchResult{}, err
	}

	res, err := c.users.BulkUpdate(ctx, ops)
	if err != nil {
		return ports.BatchResult{}, fmt.Errorf("bulk update: %w", err)
	}

	for _, op := range ops {
		c.audit.Record(newAuditEvent(domain.EntityUser, op.ID, domain.AuditBulkUpdated, changedFields(op.Changes)))
	}
	c.log.Info().
		Int("elements", len(ops)).
		Int64("matched", res.Matched).
		Int64("modified", res.Modified).
		Msg("bulk update applied")
	return res, nil
}

// prepare runs every check for one element and returns its write.
func (c *BulkCoordinator) prepare(ctx context.Context, it ports.BulkUpdateItem) (ports.UserUpdate, error) {
	if err := validation.ID("user", it.UserID); err != nil {
		return ports.UserUpdate{}, err
	}
	if !validation.HasUserFields(it.Data) {
		return ports.UserUpdate{}, domain.BadInput("data", "update data is required")
	}
	if err := validation.UserUpdate(it.Data); err != nil {
		return ports.UserUpdate{}, err
	}

	current, err := c.users.FindByID(ctx, it.UserID)
	if err != nil {
		return ports.UserUpdate{}, err
	}
	changes, err := c.mutator.resolve(ctx, current, it.Data)
	if err != nil {
		return ports.UserUpdate{}, err
	}
	return ports.UserUpdate{ID: it.UserID, Changes: changes}, nil
}

// claimsDistinct rejects two elements setting the same email or username,
// which the per-element store checks cannot see. strings.ToLower only
// approximates the store's collation (strength 2 also folds some Unicode
// case variants it misses); the unique indexes catch what slips through.
func claimsDistinct(ops []ports.UserUpdate) error {
	emails := make(map[string]struct{})
	usernames := make(map[string]struct{})
	for _, op := range ops {
		if op.Changes.Email != nil {
			k := strings.ToLower(*op.Changes.Email)
			if _, ok := emails[k]; ok {
				return domain.Duplicate(domain.FieldEmail).WithRef(op.ID)
			}
			emails[k] = struct{}{}
		}
		if op.Changes.Username != nil {
			k := strings.ToLower(*op.Changes.Username)
			if _, ok := usernames[k]; ok {
				return domain.Duplicate(domain.FieldUsername).WithRef(op.ID)
			}
			usernames[k] = struct{}{}
		}
	}
	return nil
}
