// Package repository defines persistence for organizations and their roles.
package repository

import (
	"context"

	"platform-control-plane/backend/internal/organization/domain"
)

// Repository is the persistence interface for organizations.
type Repository interface {
	Create(ctx context.Context, o *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
}

// RoleRepository is the persistence interface for organization roles.
type RoleRepository interface {
	Create(ctx context.Context, r *domain.OrganizationRole) error
	GetByID(ctx context.Context, id string) (*domain.OrganizationRole, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.OrganizationRole, error)
	Delete(ctx context.Context, id string) error
}
