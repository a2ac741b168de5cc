// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// DatabaseURL is the Postgres DSN; empty until DB is wired.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the HMAC signing secret for session tokens. Required when auth is enabled.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTTTLMinutes is the session token lifetime in minutes (e.g. 60).
	JWTTTLMinutes int `mapstructure:"JWT_TTL_MINUTES"`
	// AppName is used as the token issuer and the TOTP issuer label shown in authenticator apps.
	AppName string `mapstructure:"APP_NAME"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// TokenDenylistTTL is how long a revoked token id stays on the deny list (e.g. "1h").
	// Should be at least the session token TTL so a revoked token can never outlive the list.
	TokenDenylistTTL string `mapstructure:"TOKEN_DENYLIST_TTL"`
	// GRPCAddr is the listen address for the gRPC server (e.g. ":50051").
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. http://localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL_MINUTES", 60)
	v.SetDefault("APP_NAME", "platform-control-plane")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("TOKEN_DENYLIST_TTL", "1h")
	v.SetDefault("GRPC_ADDR", ":50051")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.AppName == "" {
		return nil, errors.New("config: APP_NAME must be set")
	}
	if cfg.JWTTTLMinutes <= 0 {
		return nil, errors.New("config: JWT_TTL_MINUTES must be positive")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// SessionTTL returns the session token lifetime as a time.Duration.
func (c *Config) SessionTTL() time.Duration {
	if c.JWTTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

// DenylistTTL parses TokenDenylistTTL as a time.Duration. Falls back to the session TTL
// if unset or invalid, so revoked token ids cover the full token lifetime.
func (c *Config) DenylistTTL() time.Duration {
	d, err := time.ParseDuration(c.TokenDenylistTTL)
	if err != nil || d <= 0 {
		return c.SessionTTL()
	}
	return d
}

// SecretBytes returns the HMAC signing secret as bytes.
func (c *Config) SecretBytes() []byte {
	return []byte(c.JWTSecret)
}
