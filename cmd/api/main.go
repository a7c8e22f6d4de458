package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BradenHooton/scribe/internal/auth"
	"github.com/BradenHooton/scribe/internal/background"
	"github.com/BradenHooton/scribe/internal/config"
	"github.com/BradenHooton/scribe/internal/database"
	"github.com/BradenHooton/scribe/internal/handlers"
	middlewareCustom "github.com/BradenHooton/scribe/internal/middleware"
	"github.com/BradenHooton/scribe/internal/repositories"
	"github.com/BradenHooton/scribe/internal/routes"
	"github.com/BradenHooton/scribe/internal/services"
	"github.com/BradenHooton/scribe/internal/storage"
	pkghttp "github.com/BradenHooton/scribe/pkg/http"
	pkglogger "github.com/BradenHooton/scribe/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Server.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("lockout_store", cfg.Auth.LockoutStore),
		slog.String("upload_storage", cfg.Upload.Storage))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		err := database.Migrate(ctx, cfg.Database.DSN(), logger)
		cancel()
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	loginAttemptRepo := repositories.NewLoginAttemptRepository(db)
	articleRepo := repositories.NewArticleRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	accessLogRepo := repositories.NewAccessLogRepository(db)

	var guard services.LoginGuard
	switch cfg.Auth.LockoutStore {
	case config.LockoutStorePostgres:
		repoGuard := services.NewRepositoryLoginGuard(repositories.NewLoginLockoutRepository(db), logger)
		if cfg.Auth.LockoutFailClosed {
			repoGuard = repoGuard.FailClosed()
		}
		guard = repoGuard
	default:
		guard = services.NewMemoryLoginGuard()
	}

	blobStore, uploads, err := newBlobStore(context.Background(), &cfg.Upload, logger)
	if err != nil {
		logger.Error("failed to initialize upload storage", slog.Any("error", err))
		os.Exit(1)
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret)
	auditLogger := pkglogger.NewAuditLogger(logger)
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	// Initialize services
	authService := services.NewAuthService(
		userRepo,
		loginAttemptRepo,
		guard,
		tokenManager,
		services.AuthConfig{
			HistoryRetention: cfg.Auth.LoginHistoryRetention,
			Timing: auth.NewTimingDelay(auth.TimingConfig{
				BaseDelayMs:   cfg.Auth.FailureDelayMs,
				RandomDelayMs: cfg.Auth.FailureJitterMs,
			}),
		},
		logger,
		auditLogger,
	)
	articleService := services.NewArticleService(articleRepo, logger)
	profileService := services.NewProfileService(profileRepo, logger)
	uploadService := services.NewUploadService(blobStore, logger)
	accessLogService := services.NewAccessLogService(accessLogRepo, logger)

	// Bootstrap first account if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.EnsureAdmin(ctx, userRepo, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger, ipConfig))
	router.Use(middleware.Recoverer)
	router.Use(middlewareCustom.AccessLogger(accessLogService, ipConfig))
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService, ipConfig, cfg.Auth.GenericLoginErrors),
		Articles: handlers.NewArticleHandler(articleService, auditLogger, ipConfig),
		Profile:  handlers.NewProfileHandler(profileService, auditLogger, ipConfig),
		Upload:   handlers.NewUploadHandler(uploadService, cfg.Upload.MaxBytes, auditLogger, ipConfig),
		Logs:     handlers.NewAccessLogHandler(accessLogService, time.Local),
	}, tokenManager, ipConfig, uploads)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "down"})
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "up"})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Background workers
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	cleanupManager := background.NewCleanupManager(loginAttemptRepo, logger, cfg.Auth.CleanupInterval)
	var workers sync.WaitGroup
	workers.Add(2)
	go func() {
		defer workers.Done()
		cleanupManager.Start(workerCtx)
	}()
	go func() {
		defer workers.Done()
		accessLogService.Run(workerCtx)
	}()

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Stop workers after the server so queued visits are flushed
	cleanupManager.Stop()
	workerCancel()
	workers.Wait()

	logger.Info("server stopped gracefully")
}

// newBlobStore picks the upload backend. The returned handler serves
// filesystem uploads and is nil for S3, where objects have their own URLs.
func newBlobStore(ctx context.Context, cfg *config.UploadConfig, logger *slog.Logger) (storage.BlobStore, http.Handler, error) {
	if cfg.Storage == config.UploadStorageS3 {
		store, err := storage.NewS3Store(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3Prefix, cfg.S3PublicBaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}

	store, err := storage.NewFilesystemStore(cfg.Dir, "/uploads/", logger)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Handler(), nil
}
