package ports

import (
	"context"

	"github.com/safestreet/account-service/internal/core/domain"
)

// AuditRepository persists account audit events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditRecorder accepts events for asynchronous persistence. Recording is
// best-effort and must never block or fail a request.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}
