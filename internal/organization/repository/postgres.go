package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"platform-control-plane/backend/internal/organization/domain"
	"platform-control-plane/backend/internal/platform/rbac"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an organization repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the organization. The org must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Organization) error {
	if err := o.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, created_at)
		VALUES ($1, $2, $3)`,
		o.ID, o.Name, o.CreatedAt,
	)
	return err
}

// GetByID returns the organization, or nil when it does not exist.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	var o domain.Organization
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM organizations WHERE id = $1`, id,
	).Scan(&o.ID, &o.Name, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

var _ Repository = (*PostgresRepository)(nil)

type PostgresRoleRepository struct {
	db *sql.DB
}

// NewPostgresRoleRepository returns a role repository that uses the given db for persistence.
func NewPostgresRoleRepository(db *sql.DB) *PostgresRoleRepository {
	return &PostgresRoleRepository{db: db}
}

// Create persists the role. General permissions are stored as a JSON object
// of capability name to level name.
func (r *PostgresRoleRepository) Create(ctx context.Context, role *domain.OrganizationRole) error {
	if err := role.Validate(); err != nil {
		return err
	}
	general, err := encodeGeneral(role.Role.General)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO organization_roles (id, org_id, name, cluster_permission, general, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		role.ID, role.OrgID, role.Name, role.Role.ClusterPermission.String(), general, role.CreatedAt,
	)
	return err
}

// GetByID returns the role, or nil when it does not exist.
func (r *PostgresRoleRepository) GetByID(ctx context.Context, id string) (*domain.OrganizationRole, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, org_id, name, cluster_permission, general, created_at
		FROM organization_roles WHERE id = $1`, id,
	)
	role, err := scanRole(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return role, err
}

// ListByOrg returns the org's roles ordered by name.
func (r *PostgresRoleRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.OrganizationRole, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, org_id, name, cluster_permission, general, created_at
		FROM organization_roles WHERE org_id = $1 ORDER BY name`, orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.OrganizationRole
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// Delete removes the role by id. Memberships referencing it become dangling
// and are rejected at authorization time.
func (r *PostgresRoleRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM organization_roles WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (*domain.OrganizationRole, error) {
	var (
		role    domain.OrganizationRole
		cluster string
		general []byte
	)
	if err := row.Scan(&role.ID, &role.OrgID, &role.Name, &cluster, &general, &role.CreatedAt); err != nil {
		return nil, err
	}
	role.Role.ClusterPermission = rbac.ParseClusterLevel(cluster)
	m, err := decodeGeneral(general)
	if err != nil {
		return nil, err
	}
	role.Role.General = m
	return &role, nil
}

func encodeGeneral(m map[rbac.Capability]rbac.Level) ([]byte, error) {
	named := make(map[string]string, len(m))
	for capability, level := range m {
		named[string(capability)] = level.String()
	}
	return json.Marshal(named)
}

func decodeGeneral(raw []byte) (map[rbac.Capability]rbac.Level, error) {
	if len(raw) == 0 {
		return map[rbac.Capability]rbac.Level{}, nil
	}
	var named map[string]string
	if err := json.Unmarshal(raw, &named); err != nil {
		return nil, err
	}
	m := make(map[rbac.Capability]rbac.Level, len(named))
	for capability, level := range named {
		m[rbac.Capability(capability)] = rbac.ParseLevel(level)
	}
	return m, nil
}

var _ RoleRepository = (*PostgresRoleRepository)(nil)
