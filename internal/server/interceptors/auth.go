// Package interceptors wires the authentication guard into the gRPC server.
package interceptors

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"platform-control-plane/backend/internal/auth"
	"platform-control-plane/backend/internal/autherr"
)

// AuthUnary returns a unary server interceptor that authenticates each RPC
// through the guard and sets the principal (and the target org from the
// x-org-id metadata value, when present) in context.
// publicMethods is the set of full method names that skip authentication
// (e.g. AuthService Register and Login, HealthService HealthCheck).
// twoFactorMethods is the set of full method names that additionally require
// a second-factor-satisfied session.
func AuthUnary(guard *auth.Guard, publicMethods, twoFactorMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		p, err := guard.Authenticate(ctx, md.Get("authorization"), twoFactorMethods[info.FullMethod])
		if err != nil {
			return nil, autherr.GRPCStatus(err)
		}

		ctx = WithPrincipal(ctx, p)
		if orgID := firstValue(md, "x-org-id"); orgID != "" {
			ctx = WithOrgID(ctx, orgID)
		} else if p.IsAPIKey() {
			ctx = WithOrgID(ctx, p.OrgID)
		}
		return handler(ctx, req)
	}
}

func firstValue(md metadata.MD, key string) string {
	vals := md.Get(key)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}
