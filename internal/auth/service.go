package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"platform-control-plane/backend/internal/audit"
	"platform-control-plane/backend/internal/autherr"
	"platform-control-plane/backend/internal/security"
	userdomain "platform-control-plane/backend/internal/user/domain"
	userrepo "platform-control-plane/backend/internal/user/repository"
)

// ErrWeakPassword is returned by Register when the password fails the
// strength predicate.
var ErrWeakPassword = errors.New("password too weak")

// SecondFactor verifies a login-time OTP code for a user.
type SecondFactor interface {
	VerifyLoginCode(ctx context.Context, userID, code string) (bool, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	UserID    string
}

// Service owns registration, login and logout.
type Service struct {
	users        userrepo.Repository
	hasher       *security.Hasher
	tokens       *security.TokenProvider
	revoked      *security.DenyList
	secondFactor SecondFactor
	audit        audit.AuditLogger
}

// NewService returns an auth service. revoked and auditLogger may be nil.
func NewService(users userrepo.Repository, hasher *security.Hasher, tokens *security.TokenProvider, revoked *security.DenyList, secondFactor SecondFactor, auditLogger audit.AuditLogger) *Service {
	return &Service{
		users:        users,
		hasher:       hasher,
		tokens:       tokens,
		revoked:      revoked,
		secondFactor: secondFactor,
		audit:        auditLogger,
	}
}

// Register creates a user with a hashed password. The email must be unused
// and the password must pass the strength predicate.
func (s *Service) Register(ctx context.Context, email, name, password string) (*userdomain.User, error) {
	if !security.IsStrongPassword(password) {
		return nil, ErrWeakPassword
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	if existing != nil {
		return nil, autherr.Conflict("email already registered")
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, autherr.Internal(err)
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Status:       userdomain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, autherr.Internal(err)
	}
	s.logEvent(ctx, user.ID, "user_registered")
	return user, nil
}

// Login verifies the password and, for accounts with two-factor enabled, the
// OTP code, then issues a session token. The token's OTP flag is set only
// when the second factor was actually checked on this login.
func (s *Service) Login(ctx context.Context, email, password, otpCode string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	if user == nil {
		return nil, autherr.Unauthorized("invalid credentials")
	}
	if user.Status != userdomain.UserStatusActive {
		return nil, autherr.Unauthorized("account disabled")
	}
	ok, err := s.hasher.Verify([]byte(password), user.PasswordHash)
	if err != nil && !errors.Is(err, security.ErrPasswordMismatch) {
		return nil, autherr.Internal(err)
	}
	if !ok {
		s.logEvent(ctx, user.ID, "login_failure")
		return nil, autherr.Unauthorized("invalid credentials")
	}

	otpSatisfied := false
	if user.TwoFactorEnabled() {
		if otpCode == "" {
			return nil, autherr.Unauthorized("2FA code required")
		}
		valid, err := s.secondFactor.VerifyLoginCode(ctx, user.ID, otpCode)
		if err != nil {
			return nil, err
		}
		if !valid {
			s.logEvent(ctx, user.ID, "login_failure")
			return nil, autherr.ErrInvalidCode
		}
		otpSatisfied = true
	}

	token, _, expiresAt, err := s.tokens.Issue(user.ID, otpSatisfied)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	s.logEvent(ctx, user.ID, "login_success")
	return &Session{Token: token, ExpiresAt: expiresAt, UserID: user.ID}, nil
}

// IssueSessionToken mints a session token for userID directly, for flows that
// have already authenticated through another channel (e.g. OAuth callback).
func (s *Service) IssueSessionToken(userID string, otpSatisfied bool) (string, time.Time, error) {
	token, _, expiresAt, err := s.tokens.Issue(userID, otpSatisfied)
	if err != nil {
		return "", time.Time{}, autherr.Internal(err)
	}
	return token, expiresAt, nil
}

// RevokeToken ends a session before its natural expiry by placing its jti on
// the deny-list. An already-expired or malformed token is a no-op success;
// there is nothing left to revoke.
func (s *Service) RevokeToken(ctx context.Context, rawToken string) error {
	if s.revoked == nil {
		return nil
	}
	tok, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil
	}
	s.revoked.Revoke(tok.JTI)
	s.logEvent(ctx, tok.SubjectID, "logout")
	return nil
}

func (s *Service) logEvent(ctx context.Context, userID, action string) {
	if s.audit == nil {
		return
	}
	s.audit.LogEvent(ctx, "", userID, action, "user", "")
}
