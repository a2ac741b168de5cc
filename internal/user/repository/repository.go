package repository

import (
	"context"
	"errors"

	"platform-control-plane/backend/internal/user/domain"
)

// ErrVersionConflict is returned by Save when the expected version does not
// match the stored row; another writer updated the user first.
var ErrVersionConflict = errors.New("user version conflict")

// Repository defines persistence operations for user records.
type Repository interface {
	// GetByID returns the user for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail returns the user with the given email, or nil if not found.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create persists a new user. The user must have ID set.
	Create(ctx context.Context, u *domain.User) error
	// Save updates the user with a compare-and-swap on expectedVersion.
	// Returns ErrVersionConflict when the stored version differs; on success
	// the stored (and in-memory) version is incremented.
	Save(ctx context.Context, u *domain.User, expectedVersion int64) error
}
