package repository

import (
	"context"

	"platform-control-plane/backend/internal/audit/domain"
)

// Repository defines persistence operations for audit logs.
type Repository interface {
	// Create persists the audit log. The entry must have ID set.
	Create(ctx context.Context, a *domain.AuditLog) error
	// ListByOrg returns audit logs for the given org, newest first.
	ListByOrg(ctx context.Context, orgID string, limit, offset int32) ([]*domain.AuditLog, error)
}
