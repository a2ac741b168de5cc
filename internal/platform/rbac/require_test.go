package rbac

import (
	"context"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	authdomain "platform-control-plane/backend/internal/auth/domain"
	"platform-control-plane/backend/internal/server/interceptors"
)

type staticRoleResolver struct {
	roles map[string]*Role // "userID/orgID" -> role; missing means member without role
	deny  error
}

func (r *staticRoleResolver) RoleForPrincipal(ctx context.Context, p *authdomain.Principal, orgID string) (*Role, error) {
	if r.deny != nil {
		return nil, r.deny
	}
	return r.roles[p.SubjectID+"/"+orgID], nil
}

func callerCtx(orgID string) context.Context {
	ctx := interceptors.WithPrincipal(context.Background(), &authdomain.Principal{
		SubjectID: "user-1",
		Scope:     authdomain.ScopeSession,
	})
	return interceptors.WithOrgID(ctx, orgID)
}

func TestRequireGeneral_Allows(t *testing.T) {
	resolver := &staticRoleResolver{roles: map[string]*Role{
		"user-1/org-1": {General: map[Capability]Level{CapabilityMembers: LevelReadWrite}},
	}}
	orgID, p, err := RequireGeneral(callerCtx("org-1"), resolver, CapabilityMembers, LevelRead)
	if err != nil {
		t.Fatalf("RequireGeneral: %v", err)
	}
	if orgID != "org-1" || p.SubjectID != "user-1" {
		t.Errorf("unexpected caller %q %+v", orgID, p)
	}
}

func TestRequireGeneral_InsufficientLevel(t *testing.T) {
	resolver := &staticRoleResolver{roles: map[string]*Role{
		"user-1/org-1": {General: map[Capability]Level{CapabilityMembers: LevelRead}},
	}}
	_, _, err := RequireGeneral(callerCtx("org-1"), resolver, CapabilityMembers, LevelReadWrite)
	if status.Code(err) != codes.PermissionDenied {
		t.Errorf("want PermissionDenied, got %v", err)
	}
}

func TestRequireGeneral_MissingContext(t *testing.T) {
	resolver := &staticRoleResolver{}
	_, _, err := RequireGeneral(context.Background(), resolver, CapabilityMembers, LevelRead)
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("bare context: want Unauthenticated, got %v", err)
	}
	_, _, err = RequireGeneral(interceptors.WithOrgID(context.Background(), "org-1"), resolver, CapabilityMembers, LevelRead)
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("org without principal: want Unauthenticated, got %v", err)
	}
}

func TestRequireCluster(t *testing.T) {
	resolver := &staticRoleResolver{roles: map[string]*Role{
		"user-1/org-1": {ClusterPermission: ClusterReadEnvironment},
	}}
	if _, _, err := RequireCluster(callerCtx("org-1"), resolver, ClusterReadEnvironment); err != nil {
		t.Fatalf("RequireCluster: %v", err)
	}
	_, _, err := RequireCluster(callerCtx("org-1"), resolver, ClusterFullAccess)
	if status.Code(err) != codes.PermissionDenied {
		t.Errorf("want PermissionDenied, got %v", err)
	}
}
