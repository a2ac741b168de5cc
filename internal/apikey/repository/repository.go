// Package repository defines persistence for API keys.
package repository

import (
	"context"

	"platform-control-plane/backend/internal/apikey/domain"
)

// Repository is the persistence interface for API keys. Lookups are by the
// hash of the presented value, never by plaintext.
type Repository interface {
	Create(ctx context.Context, k *domain.Key) error
	FindByValueHash(ctx context.Context, valueHash string) (*domain.Key, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Key, error)
	Delete(ctx context.Context, id string) error
}
