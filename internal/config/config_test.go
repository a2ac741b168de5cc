package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AppName == "" {
		t.Error("AppName default should not be empty")
	}
	if cfg.JWTTTLMinutes != 60 {
		t.Errorf("JWTTTLMinutes default want 60, got %d", cfg.JWTTTLMinutes)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost default want 12, got %d", cfg.BcryptCost)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_TTL_MINUTES", "15")
	t.Setenv("APP_NAME", "test-app")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTSecret != "test-secret" {
		t.Errorf("JWTSecret want test-secret, got %q", cfg.JWTSecret)
	}
	if cfg.SessionTTL() != 15*time.Minute {
		t.Errorf("SessionTTL want 15m, got %v", cfg.SessionTTL())
	}
	if cfg.AppName != "test-app" {
		t.Errorf("AppName want test-app, got %q", cfg.AppName)
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	t.Setenv("BCRYPT_COST", "99")
	if _, err := Load(); err == nil {
		t.Fatal("Load with BCRYPT_COST=99 should fail")
	}
}

func TestConfig_DenylistTTL(t *testing.T) {
	cfg := &Config{JWTTTLMinutes: 30, TokenDenylistTTL: "2h"}
	if got := cfg.DenylistTTL(); got != 2*time.Hour {
		t.Errorf("DenylistTTL want 2h, got %v", got)
	}
	cfg.TokenDenylistTTL = "nonsense"
	if got := cfg.DenylistTTL(); got != 30*time.Minute {
		t.Errorf("DenylistTTL fallback want 30m, got %v", got)
	}
}
