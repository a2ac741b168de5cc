// Package server assembles the gRPC server: interceptor chain plus the
// standard health service. Domain services register themselves on the
// returned server.
package server

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthv1 "google.golang.org/grpc/health/grpc_health_v1"

	"platform-control-plane/backend/internal/auth"
	"platform-control-plane/backend/internal/server/interceptors"
)

// healthMethods are always public; probes carry no credentials.
var healthMethods = map[string]bool{
	"/grpc.health.v1.Health/Check": true,
	"/grpc.health.v1.Health/Watch": true,
}

// New builds a gRPC server whose unary calls are authenticated by guard.
// publicMethods names additional full methods that skip authentication
// (login, register); twoFactorMethods names methods that require a
// second-factor-satisfied session.
func New(guard *auth.Guard, publicMethods, twoFactorMethods map[string]bool) *grpc.Server {
	public := make(map[string]bool, len(publicMethods)+len(healthMethods))
	for m := range healthMethods {
		public[m] = true
	}
	for m := range publicMethods {
		public[m] = true
	}

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptors.AuthUnary(guard, public, twoFactorMethods)),
	)
	healthv1.RegisterHealthServer(s, health.NewServer())
	return s
}
