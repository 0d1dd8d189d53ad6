package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/allerview/portal-gateway/internal/core/domain"
	"github.com/allerview/portal-gateway/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists events through repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record validates and persists a single audit event.
func (s *auditService) Record(ctx context.Context, event domain.AuthEvent) error {
	if event.Kind == "" || event.SessionID == "" {
		return fmt.Errorf("record audit event: missing kind or session id")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if err := s.repo.Insert(ctx, &event); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}

	s.log.Debug().
		Str("kind", string(event.Kind)).
		Str("session", event.SessionID).
		Str("subject", event.SubjectID).
		Str("method", event.Method).
		Msg("audit event recorded")

	return nil
}
