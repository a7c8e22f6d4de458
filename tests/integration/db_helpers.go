//go:build integration

package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BradenHooton/scribe/internal/database"
	"github.com/BradenHooton/scribe/internal/models"
	"github.com/BradenHooton/scribe/internal/repositories"
	"github.com/BradenHooton/scribe/pkg/auth"
)

// TestDB owns the PostgreSQL container backing an integration run.
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	DB         *database.DB
}

// SetupTestDatabase starts PostgreSQL, applies the embedded migrations and
// returns a ready pool.
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("scribe"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if err := database.Migrate(ctx, connStr, nil); err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		DB:         database.Wrap(pool, nil),
	}, nil
}

// Teardown closes the pool and stops the container.
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.DB != nil {
		db.DB.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates every table so each test starts empty.
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{"access_logs", "login_lockouts", "login_attempts", "articles", "profile", "users"}
	for _, table := range tables {
		if _, err := db.DB.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}

// SeedUser inserts an account with a bcrypt hash of password.
func SeedUser(ctx context.Context, db *database.DB, username, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return repositories.NewUserRepository(db).Create(ctx, username, hash)
}

// CountLoginAttempts returns the number of login history rows for username.
func CountLoginAttempts(ctx context.Context, db *database.DB, username string) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM login_attempts WHERE username = $1`, username).Scan(&n)
	return n, err
}
