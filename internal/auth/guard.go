// Package auth is the request-time entry point of the identity core: the
// guard turns a raw Authorization value into a principal or a typed
// rejection, and the service owns registration, login and logout.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	apikeydomain "platform-control-plane/backend/internal/apikey/domain"
	"platform-control-plane/backend/internal/auth/domain"
	"platform-control-plane/backend/internal/autherr"
	"platform-control-plane/backend/internal/security"
)

const bearerPrefix = "Bearer "

// KeyResolver looks up an API key record by its presented plaintext value.
type KeyResolver interface {
	Resolve(ctx context.Context, presented string) (*apikeydomain.Key, error)
}

// DecisionRecorder observes authentication outcomes, for metrics.
type DecisionRecorder interface {
	RecordDecision(ctx context.Context, scope, outcome string)
}

// Guard authenticates one request. It performs no writes; the only
// suspension point is the API key lookup.
type Guard struct {
	tokens  *security.TokenProvider
	revoked *security.DenyList
	keys    KeyResolver
	metrics DecisionRecorder
	now     func() time.Time
}

// NewGuard returns a Guard. revoked and metrics may be nil; a nil deny-list
// disables the revocation check and keeps tokens fully stateless.
func NewGuard(tokens *security.TokenProvider, revoked *security.DenyList, keys KeyResolver, metrics DecisionRecorder) *Guard {
	return &Guard{
		tokens:  tokens,
		revoked: revoked,
		keys:    keys,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Authenticate resolves the request's Authorization values into a principal.
// Exactly one value is required. A value with the Bearer prefix is treated
// as a session token, anything else as an API key. When requireSecondFactor
// is set, a session token without OTP proof is rejected.
func (g *Guard) Authenticate(ctx context.Context, authorization []string, requireSecondFactor bool) (*domain.Principal, error) {
	if len(authorization) != 1 || authorization[0] == "" {
		return g.deny(ctx, "none", autherr.Unauthorized("header required"))
	}
	raw := authorization[0]

	if strings.HasPrefix(raw, bearerPrefix) {
		p, err := g.authenticateSession(strings.TrimPrefix(raw, bearerPrefix), requireSecondFactor)
		if err != nil {
			return g.deny(ctx, string(domain.ScopeSession), err)
		}
		return g.allow(ctx, p)
	}

	p, err := g.authenticateKey(ctx, raw)
	if err != nil {
		return g.deny(ctx, string(domain.ScopeAPIKey), err)
	}
	return g.allow(ctx, p)
}

func (g *Guard) authenticateSession(raw string, requireSecondFactor bool) (*domain.Principal, error) {
	tok, err := g.tokens.Parse(raw)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrTokenExpired):
			return nil, autherr.Unauthorized("expired, login again")
		case errors.Is(err, security.ErrTokenInvalid):
			return nil, autherr.Unauthorized("invalid token")
		default:
			return nil, autherr.Internal(err)
		}
	}
	// The library already rejected expired signatures; the business expiry is
	// re-checked here against our own clock on every use.
	if !tok.ExpiresAt.After(g.now()) {
		return nil, autherr.Unauthorized("expired, login again")
	}
	if g.revoked != nil && g.revoked.Revoked(tok.JTI) {
		return nil, autherr.Unauthorized("session revoked")
	}
	if requireSecondFactor && !tok.OTPSatisfied {
		return nil, autherr.Unauthorized("2FA not validated")
	}
	return &domain.Principal{
		SubjectID:             tok.SubjectID,
		Scope:                 domain.ScopeSession,
		SecondFactorSatisfied: tok.OTPSatisfied,
	}, nil
}

func (g *Guard) authenticateKey(ctx context.Context, presented string) (*domain.Principal, error) {
	key, err := g.keys.Resolve(ctx, presented)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, autherr.Unauthorized("invalid api key")
	}
	if key.Expired(g.now()) {
		return nil, autherr.Unauthorized("expired")
	}
	return &domain.Principal{
		SubjectID:             key.ID,
		Scope:                 domain.ScopeAPIKey,
		OrgID:                 key.OrgID,
		RoleID:                key.RoleID,
		SecondFactorSatisfied: true,
	}, nil
}

func (g *Guard) allow(ctx context.Context, p *domain.Principal) (*domain.Principal, error) {
	if g.metrics != nil {
		g.metrics.RecordDecision(ctx, string(p.Scope), "allow")
	}
	return p, nil
}

func (g *Guard) deny(ctx context.Context, scope string, err error) (*domain.Principal, error) {
	if g.metrics != nil {
		g.metrics.RecordDecision(ctx, scope, "deny")
	}
	return nil, err
}
