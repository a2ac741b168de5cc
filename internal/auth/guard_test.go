package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apikeydomain "platform-control-plane/backend/internal/apikey/domain"
	"platform-control-plane/backend/internal/auth/domain"
	"platform-control-plane/backend/internal/autherr"
	"platform-control-plane/backend/internal/security"
)

type staticKeyResolver struct {
	keys map[string]*apikeydomain.Key // plaintext -> key
}

func (r *staticKeyResolver) Resolve(ctx context.Context, presented string) (*apikeydomain.Key, error) {
	return r.keys[presented], nil
}

func newTestGuard(t *testing.T, keys map[string]*apikeydomain.Key) (*Guard, *security.TokenProvider, *security.DenyList) {
	t.Helper()
	tokens, err := security.NewTokenProvider([]byte("test-secret-0123456789"), "test-app", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	revoked := security.NewDenyList(time.Hour)
	return NewGuard(tokens, revoked, &staticKeyResolver{keys: keys}, nil), tokens, revoked
}

func TestGuard_SessionToken(t *testing.T) {
	guard, tokens, _ := newTestGuard(t, nil)
	raw, _, _, err := tokens.Issue("user-1", false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	p, err := guard.Authenticate(context.Background(), []string{"Bearer " + raw}, false)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.SubjectID != "user-1" || p.Scope != domain.ScopeSession {
		t.Errorf("unexpected principal %+v", p)
	}
	if p.SecondFactorSatisfied {
		t.Error("token issued without OTP proof must not satisfy the second factor")
	}
}

func TestGuard_HeaderRequired(t *testing.T) {
	guard, tokens, _ := newTestGuard(t, nil)
	raw, _, _, _ := tokens.Issue("user-1", false)

	for name, values := range map[string][]string{
		"absent":    nil,
		"empty":     {""},
		"duplicate": {"Bearer " + raw, "Bearer " + raw},
	} {
		if _, err := guard.Authenticate(context.Background(), values, false); !errors.Is(err, autherr.ErrUnauthorized) {
			t.Errorf("%s header: want unauthorized, got %v", name, err)
		}
	}
}

func TestGuard_ExpiredToken(t *testing.T) {
	guard, tokens, _ := newTestGuard(t, nil)
	raw, _, _, err := tokens.IssueWithTTL("user-1", -time.Second, false)
	if err != nil {
		t.Fatalf("IssueWithTTL: %v", err)
	}
	_, err = guard.Authenticate(context.Background(), []string{"Bearer " + raw}, false)
	if !errors.Is(err, autherr.ErrUnauthorized) {
		t.Fatalf("already-expired token: want unauthorized, got %v", err)
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Errorf("rejection should name expiry, got %q", err)
	}
}

func TestGuard_MalformedToken(t *testing.T) {
	guard, _, _ := newTestGuard(t, nil)
	if _, err := guard.Authenticate(context.Background(), []string{"Bearer not.a.token"}, false); !errors.Is(err, autherr.ErrUnauthorized) {
		t.Errorf("malformed token: want unauthorized, got %v", err)
	}
}

func TestGuard_RevokedToken(t *testing.T) {
	guard, tokens, revoked := newTestGuard(t, nil)
	raw, jti, _, err := tokens.Issue("user-1", false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := guard.Authenticate(context.Background(), []string{"Bearer " + raw}, false); err != nil {
		t.Fatalf("pre-revocation: %v", err)
	}
	revoked.Revoke(jti)
	if _, err := guard.Authenticate(context.Background(), []string{"Bearer " + raw}, false); !errors.Is(err, autherr.ErrUnauthorized) {
		t.Errorf("revoked token: want unauthorized, got %v", err)
	}
}

func TestGuard_SecondFactorGate(t *testing.T) {
	guard, tokens, _ := newTestGuard(t, nil)

	without, _, _, _ := tokens.Issue("user-1", false)
	_, err := guard.Authenticate(context.Background(), []string{"Bearer " + without}, true)
	if !errors.Is(err, autherr.ErrUnauthorized) {
		t.Fatalf("gated route without OTP proof: want unauthorized, got %v", err)
	}

	with, _, _, _ := tokens.Issue("user-1", true)
	p, err := guard.Authenticate(context.Background(), []string{"Bearer " + with}, true)
	if err != nil {
		t.Fatalf("gated route with OTP proof: %v", err)
	}
	if !p.SecondFactorSatisfied {
		t.Error("principal should carry the second-factor flag")
	}
}

func TestGuard_APIKey(t *testing.T) {
	guard, _, _ := newTestGuard(t, map[string]*apikeydomain.Key{
		"pk_valid": {ID: "key-1", OrgID: "org-1", RoleID: "role-1"},
	})

	p, err := guard.Authenticate(context.Background(), []string{"pk_valid"}, false)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.Scope != domain.ScopeAPIKey || p.OrgID != "org-1" || p.RoleID != "role-1" {
		t.Errorf("unexpected principal %+v", p)
	}
	if !p.SecondFactorSatisfied {
		t.Error("API key principals unconditionally satisfy the second factor")
	}
}

func TestGuard_UnknownAPIKey(t *testing.T) {
	guard, _, _ := newTestGuard(t, nil)
	if _, err := guard.Authenticate(context.Background(), []string{"pk_unknown"}, false); !errors.Is(err, autherr.ErrUnauthorized) {
		t.Errorf("unknown key: want unauthorized, got %v", err)
	}
}

func TestGuard_ExpiredAPIKey(t *testing.T) {
	past := time.Now().UTC().Add(-time.Second)
	guard, _, _ := newTestGuard(t, map[string]*apikeydomain.Key{
		"pk_stale": {ID: "key-1", OrgID: "org-1", ExpiresAt: &past},
	})

	_, err := guard.Authenticate(context.Background(), []string{"pk_stale"}, false)
	if !errors.Is(err, autherr.ErrUnauthorized) {
		t.Fatalf("expired key: want unauthorized, got %v", err)
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Errorf("rejection should name expiry, got %q", err)
	}
}
