package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
)

// userMutator turns validated user input into store changes. It is shared by
// single-record updates and both batch modes.
type userMutator struct {
	unique *UniquenessResolver
	refs   *RoleReferenceChecker
	hasher ports.PasswordHasher
}

// resolve runs the checks that need the store. current is nil for a
// homogeneous batch, where email and username are never present; otherwise
// uniqueness is only checked for fields that actually change.
func (m *userMutator) resolve(ctx context.Context, current *domain.User, in ports.UserInput) (domain.UserChanges, error) {
	var ch domain.UserChanges

	if in.FirstName.Present() {
		ch.FirstName = trimmed(in.FirstName.Value)
	}
	if in.LastName.Present() {
		ch.LastName = trimmed(in.LastName.Value)
	}
	if in.Email.Present() {
		email := strings.TrimSpace(in.Email.Value)
		if current == nil || email != current.Email {
			if err := m.unique.Ensure(ctx, domain.EntityUser, domain.FieldEmail, email, idOf(current)); err != nil {
				return domain.UserChanges{}, err
			}
		}
		ch.Email = &email
	}
	if in.Username.Present() {
		username := strings.TrimSpace(in.Username.Value)
		if current == nil || username != current.Username {
			if err := m.unique.Ensure(ctx, domain.EntityUser, domain.FieldUsername, username, idOf(current)); err != nil {
				return domain.UserChanges{}, err
			}
		}
		ch.Username = &username
	}
	if in.Password.Present() {
		digest, err := m.hasher.Hash(in.Password.Value)
		if err != nil {
			return domain.UserChanges{}, fmt.Errorf("hash password: %w", err)
		}
		ch.PasswordDigest = &digest
	}
	if in.PhoneNumber.Set {
		// null clears the stored number
		phone := ""
		if in.PhoneNumber.Present() {
			phone = strings.TrimSpace(in.PhoneNumber.Value)
		}
		ch.PhoneNumber = &phone
	}
	if in.Role.Present() {
		if err := m.refs.EnsureRole(ctx, in.Role.Value); err != nil {
			return domain.UserChanges{}, err
		}
		role := in.Role.Value
		ch.RoleID = &role
	}
	if in.Active.Present() {
		active := in.Active.Value
		ch.Active = &active
	}
	return ch, nil
}

func idOf(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}

func trimmed(s string) *string {
	s = strings.TrimSpace(s)
	return &s
}

// normalizeModules trims and deduplicates access modules.
func normalizeModules(modules []string) []string {
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		out = append(out, strings.TrimSpace(m))
	}
	return domain.DedupModules(out)
}

// changedFields lists the field names a change set touches, for auditing.
func changedFields(ch domain.UserChanges) []string {
	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(ch.FirstName != nil, domain.FieldFirstName)
	add(ch.LastName != nil, domain.FieldLastName)
	add(ch.Email != nil, domain.FieldEmail)
	add(ch.Username != nil, domain.FieldUsername)
	add(ch.PasswordDigest != nil, domain.FieldPassword)
	add(ch.PhoneNumber != nil, domain.FieldPhoneNumber)
	add(ch.RoleID != nil, domain.FieldRole)
	add(ch.Active != nil, domain.FieldActive)
	return fields
}

// withRef binds err to a batch element so the caller learns which one failed.
func withRef(err error, id string) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.WithRef(id)
	}
	return fmt.Errorf("user %s: %w", id, err)
}

type nopAudit struct{}

func (nopAudit) Record(domain.AuditEvent) {}

func auditOrNop(a ports.AuditRecorder) ports.AuditRecorder {
	if a == nil {
		return nopAudit{}
	}
	return a
}

func newAuditEvent(entity, id string, action domain.AuditAction, fields []string) domain.AuditEvent {
	return domain.AuditEvent{
		ID:       uuid.NewString(),
		Entity:   entity,
		EntityID: id,
		Action:   action,
		Fields:   fields,
		At:       time.Now().UTC(),
	}
}

func pages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
