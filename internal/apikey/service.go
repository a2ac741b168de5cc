// Package apikey manages static organization-scoped API keys. Keys are
// minted with a generated plaintext value that is returned exactly once;
// storage and lookup work on the value's one-way hash.
package apikey

import (
	"context"
	"time"

	"github.com/google/uuid"

	"platform-control-plane/backend/internal/apikey/domain"
	apikeyrepo "platform-control-plane/backend/internal/apikey/repository"
	"platform-control-plane/backend/internal/audit"
	"platform-control-plane/backend/internal/autherr"
	"platform-control-plane/backend/internal/security"
)

// MintedKey pairs the persisted record with the plaintext value. The
// plaintext exists only in this struct; it cannot be recovered later.
type MintedKey struct {
	Key       *domain.Key
	Plaintext string
}

// Service mints and resolves API keys.
type Service struct {
	keys  apikeyrepo.Repository
	audit audit.AuditLogger
	now   func() time.Time
}

// NewService returns an API key service. auditLogger may be nil.
func NewService(keys apikeyrepo.Repository, auditLogger audit.AuditLogger) *Service {
	return &Service{
		keys:  keys,
		audit: auditLogger,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Mint creates a key for the org. roleID may be empty (unrestricted key);
// expiresAt may be nil (never expires).
func (s *Service) Mint(ctx context.Context, orgID, name, roleID string, expiresAt *time.Time) (*MintedKey, error) {
	plaintext, err := security.GenerateAPIKey()
	if err != nil {
		return nil, autherr.Internal(err)
	}
	key := &domain.Key{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		Name:      name,
		ValueHash: security.HashAPIKey(plaintext),
		RoleID:    roleID,
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}
	if err := s.keys.Create(ctx, key); err != nil {
		return nil, autherr.Internal(err)
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, orgID, "", "api_key_created", "api_key", key.ID)
	}
	return &MintedKey{Key: key, Plaintext: plaintext}, nil
}

// Resolve looks up the key matching a presented plaintext value. Returns nil
// when no key matches. Expiry is not checked here; the caller owns that
// decision against its own clock.
func (s *Service) Resolve(ctx context.Context, presented string) (*domain.Key, error) {
	key, err := s.keys.FindByValueHash(ctx, security.HashAPIKey(presented))
	if err != nil {
		return nil, autherr.Internal(err)
	}
	return key, nil
}

// Revoke deletes the key by id.
func (s *Service) Revoke(ctx context.Context, orgID, keyID string) error {
	if err := s.keys.Delete(ctx, keyID); err != nil {
		return autherr.Internal(err)
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, orgID, "", "api_key_revoked", "api_key", keyID)
	}
	return nil
}

// List returns the org's keys. Hashes are included; plaintext never is.
func (s *Service) List(ctx context.Context, orgID string) ([]*domain.Key, error) {
	keys, err := s.keys.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	return keys, nil
}
