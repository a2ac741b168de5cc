package rbac

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	authdomain "platform-control-plane/backend/internal/auth/domain"
	"platform-control-plane/backend/internal/autherr"
	"platform-control-plane/backend/internal/server/interceptors"
)

// PrincipalRoleResolver returns a principal's effective role in an org.
// Implemented by the membership resolver.
type PrincipalRoleResolver interface {
	RoleForPrincipal(ctx context.Context, p *authdomain.Principal, orgID string) (*Role, error)
}

// RequireGeneral ensures the caller is authenticated with org context and
// that their role grants at least required on capability.
// Returns (orgID, principal, nil) on success; returns a gRPC error
// (Unauthenticated or PermissionDenied) on failure.
func RequireGeneral(ctx context.Context, resolver PrincipalRoleResolver, capability Capability, required Level) (string, *authdomain.Principal, error) {
	orgID, p, err := callerContext(ctx)
	if err != nil {
		return "", nil, err
	}
	role, err := resolver.RoleForPrincipal(ctx, p, orgID)
	if err != nil {
		return "", nil, autherr.GRPCStatus(err)
	}
	if err := VerifyGeneral(role, capability, required); err != nil {
		return "", nil, autherr.GRPCStatus(err)
	}
	return orgID, p, nil
}

// RequireCluster ensures the caller is authenticated with org context and
// that their role grants at least the required cluster level.
func RequireCluster(ctx context.Context, resolver PrincipalRoleResolver, required ClusterLevel) (string, *authdomain.Principal, error) {
	orgID, p, err := callerContext(ctx)
	if err != nil {
		return "", nil, err
	}
	role, err := resolver.RoleForPrincipal(ctx, p, orgID)
	if err != nil {
		return "", nil, autherr.GRPCStatus(err)
	}
	if err := VerifyCluster(role, required); err != nil {
		return "", nil, autherr.GRPCStatus(err)
	}
	return orgID, p, nil
}

func callerContext(ctx context.Context) (string, *authdomain.Principal, error) {
	orgID, okOrg := interceptors.GetOrgID(ctx)
	p, okPrincipal := interceptors.GetPrincipal(ctx)
	if !okOrg || orgID == "" || !okPrincipal || p == nil {
		return "", nil, status.Error(codes.Unauthenticated, "org and principal context required")
	}
	return orgID, p, nil
}
