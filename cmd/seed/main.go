// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"log"
	"os"
	"time"

	apikeydomain "platform-control-plane/backend/internal/apikey/domain"
	apikeyrepo "platform-control-plane/backend/internal/apikey/repository"
	"platform-control-plane/backend/internal/config"
	"platform-control-plane/backend/internal/db"
	membershipdomain "platform-control-plane/backend/internal/membership/domain"
	membershiprepo "platform-control-plane/backend/internal/membership/repository"
	orgdomain "platform-control-plane/backend/internal/organization/domain"
	orgrepo "platform-control-plane/backend/internal/organization/repository"
	"platform-control-plane/backend/internal/platform/rbac"
	"platform-control-plane/backend/internal/security"
	userdomain "platform-control-plane/backend/internal/user/domain"
	userrepo "platform-control-plane/backend/internal/user/repository"
)

const (
	devUserEmail    = "dev@example.com"
	devPassword     = "password-123!"
	devUserID       = "7b9a6c1e-0000-4000-8000-000000000001"
	devOrgID        = "7b9a6c1e-0000-4000-8000-000000000002"
	devRoleID       = "7b9a6c1e-0000-4000-8000-000000000003"
	devMembershipID = "7b9a6c1e-0000-4000-8000-000000000004"
	devAPIKeyID     = "7b9a6c1e-0000-4000-8000-000000000005"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (dev@example.com exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()

	if err := users.Create(ctx, &userdomain.User{
		ID:           devUserID,
		Email:        devUserEmail,
		Name:         "Dev User",
		PasswordHash: passwordHash,
		Status:       userdomain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		log.Fatalf("create dev user: %v", err)
	}

	orgs := orgrepo.NewPostgresRepository(conn)
	if err := orgs.Create(ctx, &orgdomain.Organization{
		ID:        devOrgID,
		Name:      "Dev Org",
		CreatedAt: now,
	}); err != nil {
		log.Fatalf("create dev org: %v", err)
	}

	roles := orgrepo.NewPostgresRoleRepository(conn)
	if err := roles.Create(ctx, &orgdomain.OrganizationRole{
		ID:    devRoleID,
		OrgID: devOrgID,
		Name:  "viewer",
		Role: rbac.Role{
			ClusterPermission: rbac.ClusterReadEnvironment,
			General: map[rbac.Capability]rbac.Level{
				rbac.CapabilityProject:     rbac.LevelRead,
				rbac.CapabilityCredentials: rbac.LevelRead,
			},
		},
		CreatedAt: now,
	}); err != nil {
		log.Fatalf("create dev role: %v", err)
	}

	memberships := membershiprepo.NewPostgresRepository(conn)
	// The dev user carries no role id, so it acts as the org owner.
	if err := memberships.Create(ctx, &membershipdomain.Membership{
		ID:        devMembershipID,
		UserID:    devUserID,
		OrgID:     devOrgID,
		CreatedAt: now,
	}); err != nil {
		log.Fatalf("create dev membership: %v", err)
	}

	plaintext, err := security.GenerateAPIKey()
	if err != nil {
		log.Fatalf("generate api key: %v", err)
	}
	keys := apikeyrepo.NewPostgresRepository(conn)
	if err := keys.Create(ctx, &apikeydomain.Key{
		ID:        devAPIKeyID,
		OrgID:     devOrgID,
		Name:      "dev key",
		ValueHash: security.HashAPIKey(plaintext),
		RoleID:    devRoleID,
		CreatedAt: now,
	}); err != nil {
		log.Fatalf("create dev api key: %v", err)
	}

	log.Println("Seed complete.")
	log.Printf("  user: %s / %s", devUserEmail, devPassword)
	log.Printf("  org: %s", devOrgID)
	log.Printf("  api key (save it now, it is not stored): %s", plaintext)
}
