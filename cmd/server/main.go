package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	apikeyrepo "platform-control-plane/backend/internal/apikey/repository"
	"platform-control-plane/backend/internal/audit"
	auditrepo "platform-control-plane/backend/internal/audit/repository"
	"platform-control-plane/backend/internal/auth"
	"platform-control-plane/backend/internal/config"
	"platform-control-plane/backend/internal/db"
	"platform-control-plane/backend/internal/security"
	"platform-control-plane/backend/internal/server"
	"platform-control-plane/backend/internal/telemetry/otel"

	apikeyservice "platform-control-plane/backend/internal/apikey"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set; create a .env from .env.example or set JWT_SECRET")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.AppName, cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	tokens, err := security.NewTokenProvider(cfg.SecretBytes(), cfg.AppName, cfg.SessionTTL())
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}
	revoked := security.NewDenyList(cfg.DenylistTTL())

	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(conn), nil)
	keys := apikeyservice.NewService(apikeyrepo.NewPostgresRepository(conn), auditLogger)

	metrics, err := otel.NewAuthMetrics(providers.MeterProvider)
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}
	guard := auth.NewGuard(tokens, revoked, keys, metrics)

	s := server.New(guard, nil, nil)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down gRPC server...")
	s.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("gRPC server stopped")
}
