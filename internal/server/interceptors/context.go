package interceptors

import (
	"context"

	"platform-control-plane/backend/internal/auth/domain"
)

type contextKey struct{ name string }

var (
	principalKey = contextKey{"principal"}
	orgIDKey     = contextKey{"org_id"}
)

// WithPrincipal returns a context with the authenticated principal set.
// Handlers and the rbac helpers read it via GetPrincipal.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal returns the principal from context and true if set; otherwise nil, false.
func GetPrincipal(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*domain.Principal)
	return p, ok
}

// WithOrgID returns a context with the target org_id set.
func WithOrgID(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, orgIDKey, orgID)
}

// GetOrgID returns the org_id from context and true if set; otherwise "", false.
func GetOrgID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(orgIDKey).(string)
	return v, ok
}
