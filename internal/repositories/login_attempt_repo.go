package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/scribe/internal/database"
	"github.com/BradenHooton/scribe/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LoginAttemptRepository stores the login history
type LoginAttemptRepository struct {
	db *database.DB
}

func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// RecordAttempt stores one login outcome. A missing ID is generated.
func (r *LoginAttemptRepository) RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}

	query := `
		INSERT INTO login_attempts (id, username, ip_address, user_agent, attempt_time, success, failure_reason, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		attempt.ID,
		attempt.Username,
		attempt.IPAddress,
		attempt.UserAgent,
		attempt.AttemptTime,
		attempt.Success,
		attempt.FailureReason,
		attempt.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

// ListByUsername returns the most recent attempts for username, newest first
func (r *LoginAttemptRepository) ListByUsername(ctx context.Context, username string, limit int) ([]*models.LoginAttempt, error) {
	query := `
		SELECT id, username, ip_address, user_agent, attempt_time, success, failure_reason, expires_at
		FROM login_attempts
		WHERE username = $1
		ORDER BY attempt_time DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query login attempts: %w", err)
	}

	attempts, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[models.LoginAttempt])
	if err != nil {
		return nil, fmt.Errorf("failed to scan login attempts: %w", err)
	}
	return attempts, nil
}

// DeleteExpiredAttempts removes history rows whose retention ended before now
func (r *LoginAttemptRepository) DeleteExpiredAttempts(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM login_attempts WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired login attempts: %w", err)
	}
	return tag.RowsAffected(), nil
}
