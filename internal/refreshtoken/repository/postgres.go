package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventflow/auth-service/internal/db"
	"eventflow/auth-service/internal/refreshtoken/domain"
	"eventflow/auth-service/internal/security"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a refresh token repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByValue returns the token for the raw value, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByValue(ctx context.Context, value string) (*domain.RefreshToken, error) {
	var (
		t          domain.RefreshToken
		revokedAt  sql.NullTime
		replacedBy sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, revoked, revoked_at, replaced_by_hash, created_at FROM refresh_tokens WHERE token_hash = $1`,
		security.HashRefreshToken(value),
	).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &revokedAt, &replacedBy, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	t.RevokedAt = nullTimeToPtr(revokedAt)
	t.ReplacedByHash = replacedBy.String
	return &t, nil
}

// Create persists the token. TokenHash is derived from Token when unset.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	if t.TokenHash == "" {
		t.TokenHash = security.HashRefreshToken(t.Token)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.Revoked, t.CreatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ErrDuplicateToken
		}
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// Revoke marks the token revoked only if it is not already revoked, in a single statement.
func (r *PostgresRepository) Revoke(ctx context.Context, value, replacedBy string) error {
	var replacedByHash sql.NullString
	if replacedBy != "" {
		replacedByHash = sql.NullString{String: security.HashRefreshToken(replacedBy), Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE, revoked_at = now(), replaced_by_hash = $2 WHERE token_hash = $1 AND revoked = FALSE`,
		security.HashRefreshToken(value), replacedByHash,
	)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if n == 0 {
		return domain.ErrAlreadyRevoked
	}
	return nil
}

// Rotate revokes oldValue in favour of next and inserts next inside a single transaction.
func (r *PostgresRepository) Rotate(ctx context.Context, oldValue string, next *domain.RefreshToken) (err error) {
	if next.TokenHash == "" {
		next.TokenHash = security.HashRefreshToken(next.Token)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin refresh rotation: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE, revoked_at = now(), replaced_by_hash = $2 WHERE token_hash = $1 AND revoked = FALSE`,
		security.HashRefreshToken(oldValue), next.TokenHash,
	)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if n == 0 {
		return domain.ErrAlreadyRevoked
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		next.ID, next.UserID, next.TokenHash, next.ExpiresAt, next.Revoked, next.CreatedAt,
	); err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ErrDuplicateToken
		}
		return fmt.Errorf("insert rotated refresh token: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit refresh rotation: %w", err)
	}
	return nil
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}
