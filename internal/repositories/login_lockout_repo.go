package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/scribe/internal/database"
	"github.com/BradenHooton/scribe/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoginLockoutRepository persists per-address failure counters so lockouts
// survive restarts and are shared between instances.
type LoginLockoutRepository struct {
	pool *pgxpool.Pool
}

func NewLoginLockoutRepository(db *database.DB) *LoginLockoutRepository {
	return &LoginLockoutRepository{pool: db.Pool}
}

func scanLockoutRow(scanner rowScanner) (*models.LoginLockout, error) {
	var lockout models.LoginLockout
	var lastFailure *time.Time

	if err := scanner.Scan(&lockout.Address, &lockout.FailureCount, &lastFailure); err != nil {
		return nil, database.MapPostgresError(err)
	}
	if lastFailure != nil {
		lockout.LastFailureAt = *lastFailure
	}
	return &lockout, nil
}

// Get returns the record for address, or models.ErrNotFound.
func (r *LoginLockoutRepository) Get(ctx context.Context, address string) (*models.LoginLockout, error) {
	query := `SELECT address, failure_count, last_failure_at FROM login_lockouts WHERE address = $1`

	return scanLockoutRow(r.pool.QueryRow(ctx, query, address))
}

// RecordFailure creates the record with a count of one or increments it,
// in a single statement so concurrent failures are never lost.
func (r *LoginLockoutRepository) RecordFailure(ctx context.Context, address string, at time.Time) (*models.LoginLockout, error) {
	query := `
		INSERT INTO login_lockouts (address, failure_count, last_failure_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (address) DO UPDATE
		SET failure_count = login_lockouts.failure_count + 1,
		    last_failure_at = EXCLUDED.last_failure_at
		RETURNING address, failure_count, last_failure_at
	`

	lockout, err := scanLockoutRow(r.pool.QueryRow(ctx, query, address, at))
	if err != nil {
		return nil, fmt.Errorf("failed to record login failure: %w", err)
	}
	return lockout, nil
}

// Reset zeroes the counter after an expired lockout.
func (r *LoginLockoutRepository) Reset(ctx context.Context, address string) error {
	query := `UPDATE login_lockouts SET failure_count = 0, last_failure_at = NULL WHERE address = $1`

	if _, err := r.pool.Exec(ctx, query, address); err != nil {
		return fmt.Errorf("failed to reset login lockout: %w", err)
	}
	return nil
}

// Delete removes the record after a successful login.
func (r *LoginLockoutRepository) Delete(ctx context.Context, address string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM login_lockouts WHERE address = $1`, address); err != nil {
		return fmt.Errorf("failed to delete login lockout: %w", err)
	}
	return nil
}
