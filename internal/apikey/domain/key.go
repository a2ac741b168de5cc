package domain

import (
	"errors"
	"time"
)

// Key is a static organization-scoped credential. The plaintext value is
// shown once at mint time; only its one-way hash is persisted, so a store
// compromise does not leak usable keys.
type Key struct {
	ID        string
	OrgID     string
	Name      string
	ValueHash string
	// RoleID restricts the key to an organization role. Empty means the key
	// is unrestricted within its organization, like an owning member.
	RoleID    string
	ExpiresAt *time.Time // nil means the key never expires
	CreatedAt time.Time
}

// Expired reports whether the key's expiry, if any, has passed at now.
func (k *Key) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}

// Validate validates the key for persistence.
func (k *Key) Validate() error {
	if k.OrgID == "" {
		return errors.New("org id is required")
	}
	if k.ValueHash == "" {
		return errors.New("value hash is required")
	}
	return nil
}
