package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"platform-control-plane/backend/internal/user/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, name, password_hash, status,
	totp_secret, totp_recovery_code, totp_confirmed_at, totp_last_step,
	version, created_at, updated_at`

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail returns the user with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Create persists the user to the database. The user must have ID set; it is
// not assigned by this method. Version starts at the user's current value.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	secret, recovery, confirmedAt, lastStep := twoFactorColumns(u.TwoFactor)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, status,
			totp_secret, totp_recovery_code, totp_confirmed_at, totp_last_step,
			version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.ID, u.Email, nullString(u.Name), u.PasswordHash, string(u.Status),
		secret, recovery, confirmedAt, lastStep,
		u.Version, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

// Save updates the user row only if the stored version equals expectedVersion,
// incrementing the version in the same statement. Returns ErrVersionConflict
// when no row matched (either missing or concurrently updated).
func (r *PostgresRepository) Save(ctx context.Context, u *domain.User, expectedVersion int64) error {
	secret, recovery, confirmedAt, lastStep := twoFactorColumns(u.TwoFactor)
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			email = $1, name = $2, password_hash = $3, status = $4,
			totp_secret = $5, totp_recovery_code = $6, totp_confirmed_at = $7, totp_last_step = $8,
			version = version + 1, updated_at = $9
		WHERE id = $10 AND version = $11`,
		u.Email, nullString(u.Name), u.PasswordHash, string(u.Status),
		secret, recovery, confirmedAt, lastStep,
		time.Now().UTC(), u.ID, expectedVersion,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}
	u.Version = expectedVersion + 1
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u           domain.User
		name        sql.NullString
		secret      sql.NullString
		recovery    sql.NullString
		confirmedAt sql.NullTime
		lastStep    sql.NullInt64
		status      string
	)
	err := row.Scan(&u.ID, &u.Email, &name, &u.PasswordHash, &status,
		&secret, &recovery, &confirmedAt, &lastStep,
		&u.Version, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Name = name.String
	u.Status = domain.UserStatus(status)
	if secret.Valid {
		tf := &domain.TwoFactorState{
			SecretBase32: secret.String,
			RecoveryCode: recovery.String,
			LastCodeStep: lastStep.Int64,
		}
		if confirmedAt.Valid {
			t := confirmedAt.Time
			tf.SetupCompletedAt = &t
		}
		u.TwoFactor = tf
	}
	return &u, nil
}

func twoFactorColumns(tf *domain.TwoFactorState) (secret, recovery sql.NullString, confirmedAt sql.NullTime, lastStep sql.NullInt64) {
	if tf == nil {
		return
	}
	secret = sql.NullString{String: tf.SecretBase32, Valid: true}
	recovery = sql.NullString{String: tf.RecoveryCode, Valid: tf.RecoveryCode != ""}
	if tf.SetupCompletedAt != nil {
		confirmedAt = sql.NullTime{Time: *tf.SetupCompletedAt, Valid: true}
	}
	lastStep = sql.NullInt64{Int64: tf.LastCodeStep, Valid: true}
	return
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repository = (*PostgresRepository)(nil)
