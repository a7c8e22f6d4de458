package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Upload   UploadConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	AutoMigrate       bool
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

type AuthConfig struct {
	JWTSecret             string
	GenericLoginErrors    bool
	LockoutStore          string // "memory" or "postgres"
	LockoutFailClosed     bool   // postgres store only: refuse logins when the store errors
	FailureDelayMs        int
	FailureJitterMs       int
	LoginHistoryRetention time.Duration
	CleanupInterval       time.Duration
	AdminUsername         string
	AdminPassword         string
}

type UploadConfig struct {
	Storage         string // "filesystem" or "s3"
	Dir             string
	MaxBytes        int64
	S3Bucket        string
	S3Region        string
	S3Prefix        string
	S3PublicBaseURL string
}

const (
	LockoutStoreMemory   = "memory"
	LockoutStorePostgres = "postgres"

	UploadStorageFilesystem = "filesystem"
	UploadStorageS3         = "s3"
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "scribe"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 2)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
			AutoMigrate:       getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "3001"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:             jwtSecret,
			GenericLoginErrors:    getEnvAsBool("AUTH_GENERIC_LOGIN_ERRORS", false),
			LockoutStore:          strings.ToLower(getEnv("LOCKOUT_STORE", LockoutStoreMemory)),
			LockoutFailClosed:     getEnvAsBool("LOCKOUT_FAIL_CLOSED", false),
			FailureDelayMs:        getEnvAsInt("LOGIN_FAILURE_DELAY_MS", 0),
			FailureJitterMs:       getEnvAsInt("LOGIN_FAILURE_JITTER_MS", 0),
			LoginHistoryRetention: getEnvAsDuration("LOGIN_HISTORY_RETENTION", 30*24*time.Hour),
			CleanupInterval:       getEnvAsDuration("CLEANUP_INTERVAL", 1*time.Hour),
			AdminUsername:         getEnv("ADMIN_USERNAME", ""),
			AdminPassword:         getEnv("ADMIN_PASSWORD", ""),
		},
		Upload: UploadConfig{
			Storage:         strings.ToLower(getEnv("UPLOAD_STORAGE", UploadStorageFilesystem)),
			Dir:             getEnv("UPLOAD_DIR", "public/uploads"),
			MaxBytes:        int64(getEnvAsInt("UPLOAD_MAX_BYTES", 2*1024*1024)),
			S3Bucket:        getEnv("S3_BUCKET", ""),
			S3Region:        getEnv("S3_REGION", "us-east-1"),
			S3Prefix:        getEnv("S3_PREFIX", "uploads/"),
			S3PublicBaseURL: strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	switch cfg.Auth.LockoutStore {
	case LockoutStoreMemory, LockoutStorePostgres:
	default:
		return nil, fmt.Errorf("LOCKOUT_STORE must be %q or %q (got %q)",
			LockoutStoreMemory, LockoutStorePostgres, cfg.Auth.LockoutStore)
	}

	switch cfg.Upload.Storage {
	case UploadStorageFilesystem:
	case UploadStorageS3:
		if cfg.Upload.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when UPLOAD_STORAGE=s3")
		}
		if cfg.Upload.S3PublicBaseURL == "" {
			return nil, fmt.Errorf("S3_PUBLIC_BASE_URL is required when UPLOAD_STORAGE=s3")
		}
	default:
		return nil, fmt.Errorf("UPLOAD_STORAGE must be %q or %q (got %q)",
			UploadStorageFilesystem, UploadStorageS3, cfg.Upload.Storage)
	}

	return cfg, nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example", "your_jwt_secret",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *ServerConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return []string{}
	}
	items := strings.Split(raw, ",")
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		return getEnvAsList("ALLOWED_ORIGINS")
	}

	// Development: the CRA dev server and the API itself
	return []string{
		"http://localhost:3000",
		"http://localhost:3001",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:3001",
		"http://127.0.0.1:5173",
	}
}
