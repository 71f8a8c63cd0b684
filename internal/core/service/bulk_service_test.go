package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
)

type bulkFixture struct {
	svc    *BulkCoordinator
	users  *stubUserRepo
	roles  *stubRoleRepo
	hasher *stubHasher
	audit  *recordingAudit
}

func newBulkFixture() bulkFixture {
	f := bulkFixture{
		users:  newStubUserRepo(),
		roles:  newStubRoleRepo(),
		hasher: &stubHasher{},
		audit:  &recordingAudit{},
	}
	f.svc = NewBulkCoordinator(f.users, f.roles, f.hasher, f.audit, 4, zerolog.Nop())
	return f
}

func TestBulkSame_ForbidsIdentityFields(t *testing.T) {
	f := newBulkFixture()
	ctx := context.Background()

	for _, in := range []ports.UserInput{
		{Email: domain.Some("x@example.com"), Active: domain.Some(false)},
		{Username: domain.Some("x")},
	} {
		_, err := f.svc.ApplySameUpdateToMany(ctx, in, ports.UserSelector{})
		if !errors.Is(err, domain.ErrBadInput) {
			t.Fatalf("expected bad-input, got %v", err)
		}
	}
	if f.users.manyWrites != 0 || len(f.users.takenChecks) != 0 {
		t.Fatalf("store touched before rejection")
	}
}

func TestBulkSame_EmptyPatch(t *testing.T) {
	f := newBulkFixture()

	_, err := f.svc.ApplySameUpdateToMany(context.Background(), ports.UserInput{}, ports.UserSelector{})
	if !errors.Is(err, domain.ErrBadInput) {
		t.Fatalf("expected bad-input, got %v", err)
	}
}

func TestBulkSame_HashesOnceAndFilters(t *testing.T) {
	f := newBulkFixture()
	member := f.roles.seed("Member")
	other := f.roles.seed("Other")
	a := f.users.seed("ada", member.ID, true)
	b := f.users.seed("bob", member.ID, true)
	c := f.users.seed("cat", other.ID, true)

	res, err := f.svc.ApplySameUpdateToMany(context.Background(),
		ports.UserInput{Password: domain.Some("rotated"), Active: domain.Some(false)},
		ports.UserSelector{RoleID: member.ID},
	)
	if err != nil {
		t.Fatalf("ApplySameUpdateToMany: %v", err)
	}
	if res.Matched != 2 || res.Modified != 2 {
		t.Fatalf("result = %+v", res)
	}
	if f.hasher.hashes != 1 {
		t.Fatalf("password hashed %d times, want 1", f.hasher.hashes)
	}
	for _, id := range []string{a.ID, b.ID} {
		if u := f.users.get(id); u.Active || u.PasswordDigest != "hashed:rotated" {
			t.Fatalf("user %s not updated: %+v", id, u)
		}
	}
	if !f.users.get(c.ID).Active {
		t.Fatalf("user outside filter was updated")
	}
	if f.audit.count() != 1 {
		t.Fatalf("expected one audit event")
	}
}

func TestBulkSame_MissingRole(t *testing.T) {
	f := newBulkFixture()

	_, err := f.svc.ApplySameUpdateToMany(context.Background(),
		ports.UserInput{Role: domain.Some(nextID())}, ports.UserSelector{})
	if !errors.Is(err, domain.ErrBadRole) {
		t.Fatalf("expected bad-role, got %v", err)
	}
	if f.users.manyWrites != 0 {
		t.Fatalf("store should not be written")
	}
}

func TestBulkSame_StoreFailure(t *testing.T) {
	f := newBulkFixture()
	f.users.writeErr = errors.New("connection reset")

	_, err := f.svc.ApplySameUpdateToMany(context.Background(),
		ports.UserInput{Active: domain.Some(true)}, ports.UserSelector{})
	if err == nil || domain.KindOf(err) != domain.KindInternal {
		t.Fatalf("expected internal failure, got %v", err)
	}
}

func TestBulkSame_BadSelectorID(t *testing.T) {
	f := newBulkFixture()

	_, err := f.svc.ApplySameUpdateToMany(context.Background(),
		ports.UserInput{Active: domain.Some(true)}, ports.UserSelector{IDs: []string{"nope"}})
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindBadID || de.Ref != "nope" {
		t.Fatalf("expected bad-id naming the id, got %v", err)
	}
}

func TestBulkSame_BadSelectorRole(t *testing.T) {
	f := newBulkFixture()

	_, err := f.svc.ApplySameUpdateToMany(context.Background(),
		ports.UserInput{Active: domain.Some(true)}, ports.UserSelector{RoleID: "bad"})
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindBadInput || de.Field != domain.FieldRole {
		t.Fatalf("expected bad-input on role, got %v", err)
	}
}

func TestBulkDifferent_InvalidElementAbortsWholeBatch(t *testing.T) {
	f := newBulkFixture()
	role := f.roles.seed("Member")
	a := f.users.seed("ada", role.ID, true)
	b := f.users.seed("bob", role.ID, true)

	_, err := f.svc.ApplyDifferentUpdatesToMany(context.Background(), []ports.BulkUpdateItem{
		{UserID: a.ID, Data: ports.UserInput{FirstName: domain.Some("Augusta")}},
		{UserID: b.ID, Data: ports.UserInput{Role: domain.Some(nextID())}},
	})
	if !errors.Is(err, domain.ErrBadRole) {
		t.Fatalf("expected bad-role, got %v", err)
	}
	var de *domain.Error
	if !errors.As(err, &de) || de.Ref != b.ID {
		t.Fatalf("error should name element %s: %v", b.ID, err)
	}
	if f.users.bulkWrites != 0 {
		t.Fatalf("no write should be issued")
	}
	if got := f.users.get(a.ID).FirstName; got != "First" {
		t.Fatalf("user A modified: %q", got)
	}
}

func TestBulkDifferent_ReportsLowestIndexFailure(t *testing.T) {
	f := newBulkFixture()
	role := f.roles.seed("Member")
	a := f.users.seed("ada", role.ID, true)
	missing := nextID()

	_, err := f.svc.ApplyDifferentUpdatesToMany(context.Background(), []ports.BulkUpdateItem{
		{UserID: a.ID, Data: ports.UserInput{Active: domain.Some(false)}},
		{UserID: missing, Data: ports.UserInput{Active: domain.Some(false)}},
		{UserID: "bad", Data: ports.UserInput{Active: domain.Some(false)}},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found for element 1, got %v", err)
	}
	var de *domain.Error
	if !errors.As(err, &de) || de.Ref != missing {
		t.Fatalf("wrong element reported: %v", err)
	}
}

func TestBulkDifferent_Success(t *testing.T) {
	f := newBulkFixture()
	role := f.roles.seed("Member")
	a := f.users.seed("ada", role.ID, true)
	b := f.users.seed("bob", role.ID, true)

	res, err := f.svc.ApplyDifferentUpdatesToMany(context.Background(), []ports.BulkUpdateItem{
		{UserID: a.ID, Data: ports.UserInput{Email: domain.Some("ada@new.example.com")}},
		{UserID: b.ID, Data: ports.UserInput{Username: domain.Some("robert"), Active: domain.Some(false)}},
	})
	if err != nil {
		t.Fatalf("ApplyDifferentUpdatesToMany: %v", err)
	}
	if res.Modified != 2 || f.users.bulkWrites != 1 {
		t.Fatalf("result = %+v, writes = %d", res, f.users.bulkWrites)
	}
	if f.users.get(a.ID).Email != "ada@new.example.com" || f.users.get(b.ID).Username != "robert" {
		t.Fatalf("updates not applied")
	}
	if f.audit.count() != 2 {
		t.Fatalf("expected an audit event per element, got %d", f.audit.count())
	}
}

func TestBulkDifferent_OwnEmailIsNotACollision(t *testing.T) {
	f := newBulkFixture()
	role := f.roles.seed("Member")
	a := f.users.seed("ada", role.ID, true)

	_, err := f.svc.ApplyDifferentUpdatesToMany(context.Background(), []ports.BulkUpdateItem{
		{UserID: a.ID, Data: ports.UserInput{Email: domain.Some("ADA@example.com")}},
	})
	if err != nil {
		t.Fatalf("changing case of own email should pass: %v", err)
	}
}

func TestBulkDifferent_CollisionWithOtherUser(t *testing.T) {
	f := newBulkFixture()
	role := f.roles.seed("Member")
	a := f.users.seed("ada", role.ID, true)
	f.users.seed("bob", role.ID, true)

	_, err := f.svc.ApplyDifferentUpdatesToMany(context.Background(), []ports.BulkUpdateItem{
		{UserID: a.ID, Data: ports.UserInput{Username: domain.Some("BOB")}},
	})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestBulkDifferent_ClaimsInsideBatch(t *testing.T) {
	f := newBulkFixture()
	role := f.roles.seed("Member")
	a := f.users.seed("ada", role.ID, true)
	b := f.users.seed("bob", role.ID, true)

	_, err := f.svc.ApplyDifferentUpdatesToMany(context.Background(), []ports.BulkUpdateItem{
		{UserID: a.ID, Data: ports.UserInput{Email: domain.Some("shared@example.com")}},
		{UserID: b.ID, Data: ports.UserInput{Email: domain.Some("Shared@example.com")}},
	})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if f.users.bulkWrites != 0 {
		t.Fatalf("no write should be issued")
	}
}

func TestBulkDifferent_StructuralErrors(t *testing.T) {
	f := newBulkFixture()
	role := f.roles.seed("Member")
	a := f.users.seed("ada", role.ID, true)
	ctx := context.Background()

	if _, err := f.svc.ApplyDifferentUpdatesToMany(ctx, nil); !errors.Is(err, domain.ErrBadInput) {
		t.Fatalf("empty batch: expected bad-input, got %v", err)
	}
	_, err := f.svc.ApplyDifferentUpdatesToMany(ctx, []ports.BulkUpdateItem{
		{UserID: a.ID, Data: ports.UserInput{Active: domain.Some(false)}},
		{UserID: a.ID, Data: ports.UserInput{Active: domain.Some(true)}},
	})
	if !errors.Is(err, domain.ErrBadInput) {
		t.Fatalf("duplicate ids: expected bad-input, got %v", err)
	}
	_, err = f.svc.ApplyDifferentUpdatesToMany(ctx, []ports.BulkUpdateItem{{UserID: a.ID}})
	if !errors.Is(err, domain.ErrBadInput) {
		t.Fatalf("empty data: expected bad-input, got %v", err)
	}
}

func TestBulkDifferent_StoreFailureDuringChecks(t *testing.T) {
	f := newBulkFixture()
	role := f.roles.seed("Member")
	a := f.users.seed("ada", role.ID, true)
	f.users.findErr = errors.New("timeout")

	_, err := f.svc.ApplyDifferentUpdatesToMany(context.Background(), []ports.BulkUpdateItem{
		{UserID: a.ID, Data: ports.UserInput{Active: domain.Some(false)}},
	})
	if err == nil || domain.KindOf(err) != domain.KindInternal {
		t.Fatalf("expected internal failure, got %v", err)
	}
}

func TestBulkDifferent_RejectedElementWinsOverStoreFailure(t *testing.T) {
	f := newBulkFixture()
	role := f.roles.seed("Member")
	a := f.users.seed("ada", role.ID, true)
	f.users.findErr = errors.New("timeout")

	_, err := f.svc.ApplyDifferentUpdatesToMany(context.Background(), []ports.BulkUpdateItem{
		{UserID: "nope", Data: ports.UserInput{Active: domain.Some(false)}},
		{UserID: a.ID, Data: ports.UserInput{Active: domain.Some(false)}},
	})

	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindBadID || de.Ref != "nope" {
		t.Fatalf("expected bad-id for the first element, got %v", err)
	}
}
