package ports

import (
	"context"

	"github.com/allerview/portal-gateway/internal/core/domain"
)

// AuditRepository persists authentication audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuthEvent) error
}

// AuditService records audit events. Failures must never reach the auth
// path; implementations log and count them instead.
type AuditService interface {
	Record(ctx context.Context, event domain.AuthEvent) error
}
