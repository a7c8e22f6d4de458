//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/BradenHooton/scribe/internal/auth"
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

const testJWTSecret = "test-secret-32-characters-long-for-testing"

// TestServer is the full HTTP stack over a real database.
type TestServer struct {
	Server    *httptest.Server
	DB        *database.DB
	AccessLog *services.AccessLogService

	stopWorkers context.CancelFunc
	workersDone chan struct{}
}

// NewTestServer wires the production router against db. Lockouts are kept in
// PostgreSQL and uploads land in uploadDir.
func NewTestServer(db *database.DB, uploadDir string) (*TestServer, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	userRepo := repositories.NewUserRepository(db)
	guard := services.NewRepositoryLoginGuard(repositories.NewLoginLockoutRepository(db), logger)
	tokenManager := auth.NewTokenManager(testJWTSecret)
	auditLogger := pkglogger.NewAuditLogger(logger)
	ipConfig := &pkghttp.IPConfig{TrustedProxies: []string{}}

	authService := services.NewAuthService(
		userRepo,
		repositories.NewLoginAttemptRepository(db),
		guard,
		tokenManager,
		services.AuthConfig{HistoryRetention: 24 * time.Hour},
		logger,
		auditLogger,
	)

	store, err := storage.NewFilesystemStore(uploadDir, "/uploads", logger)
	if err != nil {
		return nil, err
	}
	accessLog := services.NewAccessLogService(repositories.NewAccessLogRepository(db), logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middlewareCustom.AccessLogger(accessLog, ipConfig))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService, ipConfig, false),
		Articles: handlers.NewArticleHandler(services.NewArticleService(repositories.NewArticleRepository(db), logger), auditLogger, ipConfig),
		Profile:  handlers.NewProfileHandler(services.NewProfileService(repositories.NewProfileRepository(db), logger), auditLogger, ipConfig),
		Upload:   handlers.NewUploadHandler(services.NewUploadService(store, logger), 2*1024*1024, auditLogger, ipConfig),
		Logs:     handlers.NewAccessLogHandler(accessLog, time.UTC),
	}, tokenManager, ipConfig, store.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		accessLog.Run(ctx)
	}()

	return &TestServer{
		Server:      httptest.NewServer(r),
		DB:          db,
		AccessLog:   accessLog,
		stopWorkers: cancel,
		workersDone: done,
	}, nil
}

// Close stops the server and flushes queued visits.
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
	ts.stopWorkers()
	<-ts.workersDone
}

// Request sends a JSON request. A non-empty token is sent as a bearer token.
func (ts *TestServer) Request(method, path, token string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return http.DefaultClient.Do(req)
}

// Envelope is the response body every API route returns.
type Envelope struct {
	Code  int             `json:"code"`
	Msg   string          `json:"msg"`
	Data  json.RawMessage `json:"data"`
	Token string          `json:"token"`
	URL   string          `json:"url"`
	Error string          `json:"error"`
}

// ParseEnvelope decodes and closes resp.
func ParseEnvelope(resp *http.Response) (*Envelope, error) {
	defer resp.Body.Close()
	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return &env, nil
}
