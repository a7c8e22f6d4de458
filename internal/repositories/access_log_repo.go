package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/scribe/internal/database"
	"github.com/BradenHooton/scribe/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccessLogRepository stores and aggregates visitor records
type AccessLogRepository struct {
	pool *pgxpool.Pool
}

func NewAccessLogRepository(db *database.DB) *AccessLogRepository {
	return &AccessLogRepository{pool: db.Pool}
}

func (r *AccessLogRepository) Create(ctx context.Context, entry *models.AccessLog) error {
	query := `
		INSERT INTO access_logs (ip, path, method, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.pool.Exec(ctx, query, entry.IP, entry.Path, entry.Method, entry.UserAgent, entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert access log: %w", err)
	}
	return nil
}

// List returns one page of records inside the filter's bounds, newest
// first, plus the total number of matching records.
func (r *AccessLogRepository) List(ctx context.Context, f models.AccessLogFilter) ([]*models.AccessLog, int64, error) {
	const where = `
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM access_logs`+where, f.StartDate, f.EndDate).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count access logs: %w", err)
	}

	query := `
		SELECT id, ip, path, method, user_agent, created_at
		FROM access_logs` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, f.StartDate, f.EndDate, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query access logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*models.AccessLog, 0)
	for rows.Next() {
		var l models.AccessLog
		if err := rows.Scan(&l.ID, &l.IP, &l.Path, &l.Method, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan access log: %w", err)
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating access log rows: %w", err)
	}

	return logs, total, nil
}

// CountSince counts records at or after since
func (r *AccessLogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM access_logs WHERE created_at >= $1`, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count access logs: %w", err)
	}
	return n, nil
}

func (r *AccessLogRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM access_logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count access logs: %w", err)
	}
	return n, nil
}

func (r *AccessLogRepository) CountDistinctIPs(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(DISTINCT ip) FROM access_logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count distinct visitors: %w", err)
	}
	return n, nil
}

// DailyCountsSince groups records at or after since by calendar day in the
// database session's time zone, oldest day first. Days without visits are
// omitted.
func (r *AccessLogRepository) DailyCountsSince(ctx context.Context, since time.Time) ([]models.DailyCount, error) {
	query := `
		SELECT to_char(created_at::date, 'YYYY-MM-DD') AS date, COUNT(*) AS count
		FROM access_logs
		WHERE created_at >= $1
		GROUP BY created_at::date
		ORDER BY created_at::date
	`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily visits: %w", err)
	}

	counts, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.DailyCount])
	if err != nil {
		return nil, fmt.Errorf("failed to scan daily visits: %w", err)
	}
	return counts, nil
}

// TopPaths returns the most visited paths, busiest first
func (r *AccessLogRepository) TopPaths(ctx context.Context, limit int) ([]models.PathCount, error) {
	query := `
		SELECT path, COUNT(*) AS count
		FROM access_logs
		GROUP BY path
		ORDER BY count DESC, path
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top pages: %w", err)
	}

	paths, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.PathCount])
	if err != nil {
		return nil, fmt.Errorf("failed to scan top pages: %w", err)
	}
	return paths, nil
}
