package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists events as they are
// handed over by the dispatcher.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process persists a single audit event.
func (s *auditService) Process(ctx context.Context, ev domain.AuditEvent) error {
	if ev.Entity == "" || ev.Action == "" {
		return fmt.Errorf("process audit event %s: entity and action are required", ev.ID)
	}
	if err := s.repo.InsertEvent(ctx, &ev); err != nil {
		return fmt.Errorf("process audit event %s: %w", ev.ID, err)
	}

	s.log.Debug().
		Str("entity", ev.Entity).
		Str("entity_id", ev.EntityID).
		Str("action", string(ev.Action)).
		Msg("audit event stored")
	return nil
}
