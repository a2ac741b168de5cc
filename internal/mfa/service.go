package mfa

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"time"

	"platform-control-plane/backend/internal/audit"
	"platform-control-plane/backend/internal/autherr"
	"platform-control-plane/backend/internal/user/domain"
	userrepo "platform-control-plane/backend/internal/user/repository"
)

// ErrUserNotFound is returned when the target user record does not exist.
var ErrUserNotFound = errors.New("user not found")

// UserStore is the minimal user persistence needed by the lifecycle manager.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Save(ctx context.Context, u *domain.User, expectedVersion int64) error
}

// Enrollment is what StartEnrollment hands back for display: the secret for
// manual entry and the QR payload for scanning. The recovery code is only
// returned when the enrollment was freshly created.
type Enrollment struct {
	SecretBase32 string
	QRCodePNG    string
	RecoveryCode string
}

// Manager orchestrates the two-factor state machine on user records.
// All mutations are check-then-write with a compare-and-swap on the record
// version; a lost race surfaces as a conflict for the caller to retry.
type Manager struct {
	users  UserStore
	issuer string
	audit  audit.AuditLogger
	now    func() time.Time
}

// NewManager returns a Manager using issuer as the TOTP issuer label.
// auditLogger may be nil.
func NewManager(users UserStore, issuer string, auditLogger audit.AuditLogger) *Manager {
	return &Manager{
		users:  users,
		issuer: issuer,
		audit:  auditLogger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// StartEnrollment begins (or resumes) TOTP enrollment for the user.
// Already enabled ⇒ conflict. A pending enrollment returns the same secret and
// QR rather than regenerating, so a user can re-open the setup screen.
func (m *Manager) StartEnrollment(ctx context.Context, userID string) (*Enrollment, error) {
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.TwoFactorEnabled() {
		return nil, autherr.Conflict("two-factor already enabled")
	}

	if user.TwoFactorPending() {
		handle, err := BuildFromBase32(user.TwoFactor.SecretBase32, user.Email, m.issuer)
		if err != nil {
			return nil, autherr.Internal(err)
		}
		qr, err := handle.QRCodePNG()
		if err != nil {
			return nil, autherr.Internal(err)
		}
		return &Enrollment{SecretBase32: handle.SecretBase32(), QRCodePNG: qr}, nil
	}

	secret, err := NewSecret()
	if err != nil {
		return nil, autherr.Internal(err)
	}
	handle, err := Build(secret, user.Email, m.issuer)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	recovery, err := generateRecoveryCode()
	if err != nil {
		return nil, autherr.Internal(err)
	}
	user.TwoFactor = &domain.TwoFactorState{
		SecretBase32: handle.SecretBase32(),
		RecoveryCode: recovery,
	}
	if err := m.save(ctx, user); err != nil {
		return nil, err
	}
	qr, err := handle.QRCodePNG()
	if err != nil {
		return nil, autherr.Internal(err)
	}
	m.logEvent(ctx, user.ID, "2fa_enrollment_started")
	return &Enrollment{SecretBase32: handle.SecretBase32(), QRCodePNG: qr, RecoveryCode: recovery}, nil
}

// ConfirmEnrollment transitions a pending enrollment to enabled after the
// user proves possession of the secret with a current code. A wrong code
// leaves the record untouched.
func (m *Manager) ConfirmEnrollment(ctx context.Context, userID, code string) error {
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return autherr.Internal(err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.TwoFactorEnabled() {
		return autherr.Conflict("two-factor already enabled")
	}
	if !user.TwoFactorPending() {
		return autherr.Conflict("enrollment not started")
	}
	handle, err := BuildFromBase32(user.TwoFactor.SecretBase32, user.Email, m.issuer)
	if err != nil {
		return autherr.Internal(err)
	}
	if !handle.VerifyCodeAt(code, m.now()) {
		return autherr.ErrInvalidCode
	}
	completedAt := m.now()
	user.TwoFactor.SetupCompletedAt = &completedAt
	if err := m.save(ctx, user); err != nil {
		return err
	}
	m.logEvent(ctx, user.ID, "2fa_enabled")
	return nil
}

// Disable clears the two-factor state entirely after a correct code.
// Re-enrollment starts from scratch with a fresh secret.
func (m *Manager) Disable(ctx context.Context, userID, code string) error {
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return autherr.Internal(err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !user.TwoFactorEnabled() {
		return autherr.Conflict("two-factor not enabled")
	}
	handle, err := BuildFromBase32(user.TwoFactor.SecretBase32, user.Email, m.issuer)
	if err != nil {
		return autherr.Internal(err)
	}
	if !handle.VerifyCodeAt(code, m.now()) {
		return autherr.ErrInvalidCode
	}
	user.TwoFactor = nil
	if err := m.save(ctx, user); err != nil {
		return err
	}
	m.logEvent(ctx, user.ID, "2fa_disabled")
	return nil
}

// VerifyLoginCode checks a login-time code for a user with two-factor enabled.
// On success the matched time step is persisted and a repeat of the same step
// is rejected, so a captured code cannot be replayed within its window.
func (m *Manager) VerifyLoginCode(ctx context.Context, userID, code string) (bool, error) {
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return false, autherr.Internal(err)
	}
	if user == nil {
		return false, ErrUserNotFound
	}
	if !user.TwoFactorEnabled() {
		return false, autherr.Conflict("two-factor not enabled")
	}
	handle, err := BuildFromBase32(user.TwoFactor.SecretBase32, user.Email, m.issuer)
	if err != nil {
		return false, autherr.Internal(err)
	}
	step, ok := handle.MatchStep(code, m.now())
	if !ok {
		return false, nil
	}
	if step <= user.TwoFactor.LastCodeStep {
		// Same (or older) step already consumed: treat as replay.
		return false, nil
	}
	user.TwoFactor.LastCodeStep = step
	if err := m.save(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) save(ctx context.Context, user *domain.User) error {
	err := m.users.Save(ctx, user, user.Version)
	if err == nil {
		return nil
	}
	if errors.Is(err, userrepo.ErrVersionConflict) {
		return autherr.Conflict("concurrent update, retry")
	}
	return autherr.Internal(err)
}

func (m *Manager) logEvent(ctx context.Context, userID, action string) {
	if m.audit == nil {
		return
	}
	m.audit.LogEvent(ctx, "", userID, action, "user", "")
}

// generateRecoveryCode returns a one-time recovery code (16 base32 chars).
func generateRecoveryCode() (string, error) {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return enc.EncodeToString(b), nil
}
