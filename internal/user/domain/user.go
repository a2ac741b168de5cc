package domain

import (
	"errors"
	"time"
)

// User is the core user entity. It owns the password hash and the two-factor
// state; TwoFactor is mutated only through the mfa lifecycle manager.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Status       UserStatus
	TwoFactor    *TwoFactorState // nil when two-factor was never set up or was disabled
	// Version guards concurrent writes: Save requires the version read, and
	// increments it. A mismatch means another writer won.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// TwoFactorState is the TOTP enrollment state attached to a user record.
// A nil state is "absent"; SetupCompletedAt nil means enrollment is pending
// (secret issued, never confirmed); non-nil means enabled.
type TwoFactorState struct {
	SecretBase32     string
	RecoveryCode     string
	SetupCompletedAt *time.Time
	// LastCodeStep is the TOTP time step of the last accepted login code.
	// A second code from the same step is rejected as a replay.
	LastCodeStep int64
}

// TwoFactorEnabled reports whether the user has a confirmed second factor.
// A pending (unconfirmed) enrollment does not count.
func (u *User) TwoFactorEnabled() bool {
	return u.TwoFactor != nil && u.TwoFactor.SetupCompletedAt != nil
}

// TwoFactorPending reports whether enrollment was started but never confirmed.
func (u *User) TwoFactorPending() bool {
	return u.TwoFactor != nil && u.TwoFactor.SetupCompletedAt == nil
}

// Validate validates the user for persistence. Returns an error describing the
// first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	return nil
}
