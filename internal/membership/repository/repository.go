// Package repository defines persistence for organization memberships.
package repository

import (
	"context"

	"platform-control-plane/backend/internal/membership/domain"
)

// Repository is the persistence interface for memberships.
type Repository interface {
	Create(ctx context.Context, m *domain.Membership) error
	GetByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error)
	Delete(ctx context.Context, id string) error
}
