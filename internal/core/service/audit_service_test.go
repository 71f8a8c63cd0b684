package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/accesshub/identity-service/internal/core/domain"
)

type stubAuditRepo struct {
	insertErr error
	inserted  []*domain.AuditEvent
}

func (r *stubAuditRepo) InsertEvent(_ context.Context, e *domain.AuditEvent) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, e)
	return nil
}

func TestAuditService_Process_Stores(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, zerolog.Nop())

	ev := newAuditEvent(domain.EntityRole, "r1", domain.AuditCreated, nil)
	if err := svc.Process(context.Background(), ev); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(repo.inserted) != 1 || repo.inserted[0].ID != ev.ID {
		t.Fatalf("event not stored: %+v", repo.inserted)
	}
}

func TestAuditService_Process_RejectsIncomplete(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, zerolog.Nop())

	if err := svc.Process(context.Background(), domain.AuditEvent{ID: "x"}); err == nil {
		t.Fatalf("expected error for event without entity")
	}
	if len(repo.inserted) != 0 {
		t.Fatalf("incomplete event stored")
	}
}

func TestAuditService_Process_RepoError(t *testing.T) {
	repoErr := errors.New("write failed")
	svc := NewAuditService(&stubAuditRepo{insertErr: repoErr}, zerolog.Nop())

	err := svc.Process(context.Background(), newAuditEvent(domain.EntityUser, "u1", domain.AuditDeleted, nil))
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}
