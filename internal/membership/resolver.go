// Package membership resolves a caller's organization role for permission
// checks. Role references are verified on every resolution; a membership or
// key pointing at a deleted role is rejected rather than treated as owner.
package membership

import (
	"context"

	apikeydomain "platform-control-plane/backend/internal/apikey/domain"
	authdomain "platform-control-plane/backend/internal/auth/domain"
	"platform-control-plane/backend/internal/autherr"
	membershiprepo "platform-control-plane/backend/internal/membership/repository"
	orgrepo "platform-control-plane/backend/internal/organization/repository"
	"platform-control-plane/backend/internal/platform/rbac"
)

// Resolver loads the effective role for a principal in an organization.
type Resolver struct {
	memberships membershiprepo.Repository
	roles       orgrepo.RoleRepository
}

// NewResolver returns a Resolver over the given stores.
func NewResolver(memberships membershiprepo.Repository, roles orgrepo.RoleRepository) *Resolver {
	return &Resolver{memberships: memberships, roles: roles}
}

// RoleForUser returns the user's effective role in the org. A member without
// a role resolves to nil, the unrestricted owner case. A non-member is
// rejected with a forbidden error, as is a member whose role record no
// longer exists.
func (r *Resolver) RoleForUser(ctx context.Context, userID, orgID string) (*rbac.Role, error) {
	m, err := r.memberships.GetByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	if m == nil {
		return nil, autherr.Forbidden("not a member of this organization")
	}
	return r.load(ctx, m.RoleID)
}

// RoleForKey returns the effective role of an API key. A key without a role
// resolves to nil (unrestricted within its organization).
func (r *Resolver) RoleForKey(ctx context.Context, key *apikeydomain.Key) (*rbac.Role, error) {
	return r.load(ctx, key.RoleID)
}

// RoleForPrincipal returns the principal's effective role for the target org.
// API key principals are bound to exactly one organization; presenting a key
// against any other org is rejected.
func (r *Resolver) RoleForPrincipal(ctx context.Context, p *authdomain.Principal, orgID string) (*rbac.Role, error) {
	if p.IsAPIKey() {
		if p.OrgID != orgID {
			return nil, autherr.Forbidden("key not valid for this organization")
		}
		return r.load(ctx, p.RoleID)
	}
	return r.RoleForUser(ctx, p.SubjectID, orgID)
}

func (r *Resolver) load(ctx context.Context, roleID string) (*rbac.Role, error) {
	if roleID == "" {
		return nil, nil
	}
	role, err := r.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	if role == nil {
		// Dangling reference: deny rather than fall through to owner access.
		return nil, autherr.Forbidden("role no longer exists")
	}
	return &role.Role, nil
}
