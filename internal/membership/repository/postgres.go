package repository

import (
	"context"
	"database/sql"

	"platform-control-plane/backend/internal/membership/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a membership repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the membership. The membership must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Membership) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO memberships (id, user_id, org_id, role_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.UserID, m.OrgID, nullString(m.RoleID), m.CreatedAt,
	)
	return err
}

// GetByUserAndOrg returns the user's membership in the org, or nil when the
// user is not a member. (user_id, org_id) is unique so at most one row matches.
func (r *PostgresRepository) GetByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, org_id, role_id, created_at
		FROM memberships WHERE user_id = $1 AND org_id = $2`,
		userID, orgID,
	)
	m, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// ListByOrg returns all memberships of the org.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, org_id, role_id, created_at
		FROM memberships WHERE org_id = $1 ORDER BY created_at`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Delete removes the membership by id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMembership(row rowScanner) (*domain.Membership, error) {
	var (
		m      domain.Membership
		roleID sql.NullString
	)
	if err := row.Scan(&m.ID, &m.UserID, &m.OrgID, &roleID, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.RoleID = roleID.String
	return &m, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repository = (*PostgresRepository)(nil)
