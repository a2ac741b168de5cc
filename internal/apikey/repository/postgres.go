package repository

import (
	"context"
	"database/sql"
	"time"

	"platform-control-plane/backend/internal/apikey/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an API key repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the key. The key must have ID and ValueHash set.
func (r *PostgresRepository) Create(ctx context.Context, k *domain.Key) error {
	if err := k.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_keys (id, org_id, name, value_hash, role_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		k.ID, k.OrgID, k.Name, k.ValueHash, nullString(k.RoleID), nullTime(k.ExpiresAt), k.CreatedAt,
	)
	return err
}

// FindByValueHash returns the key with the given value hash, or nil when no
// such key exists. value_hash carries a unique index so at most one row matches.
func (r *PostgresRepository) FindByValueHash(ctx context.Context, valueHash string) (*domain.Key, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, org_id, name, value_hash, role_id, expires_at, created_at
		FROM api_keys WHERE value_hash = $1`,
		valueHash,
	)
	k, err := scanKey(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return k, err
}

// ListByOrg returns all keys belonging to the org, newest first.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.Key, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, org_id, name, value_hash, role_id, expires_at, created_at
		FROM api_keys WHERE org_id = $1
		ORDER BY created_at DESC`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Key
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// Delete removes the key by id. Deleting a missing key is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKey(row rowScanner) (*domain.Key, error) {
	var (
		k       domain.Key
		roleID  sql.NullString
		expires sql.NullTime
	)
	if err := row.Scan(&k.ID, &k.OrgID, &k.Name, &k.ValueHash, &roleID, &expires, &k.CreatedAt); err != nil {
		return nil, err
	}
	k.RoleID = roleID.String
	if expires.Valid {
		t := expires.Time
		k.ExpiresAt = &t
	}
	return &k, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ Repository = (*PostgresRepository)(nil)
