package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BradenHooton/scribe/internal/auth"
	"github.com/BradenHooton/scribe/internal/models"
	pkgauth "github.com/BradenHooton/scribe/pkg/auth"
	pkglogger "github.com/BradenHooton/scribe/pkg/logger"
)

// UserRepository defines the user store operations authentication needs
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
}

// LoginHistoryRepository stores login outcomes for later review
type LoginHistoryRepository interface {
	RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error
}

// SessionIssuer signs session tokens. Satisfied by *auth.TokenManager.
type SessionIssuer interface {
	Issue(user *models.User, now time.Time) (string, error)
}

// AuthConfig holds the optional parts of the login flow
type AuthConfig struct {
	HistoryRetention time.Duration // zero disables the login history
	Timing           *auth.TimingDelay
}

// AuthService verifies credentials behind the login guard and issues
// session tokens.
type AuthService struct {
	users       UserRepository
	history     LoginHistoryRepository
	guard       LoginGuard
	tokens      SessionIssuer
	config      AuthConfig
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

func NewAuthService(
	users UserRepository,
	history LoginHistoryRepository,
	guard LoginGuard,
	tokens SessionIssuer,
	config AuthConfig,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		users:       users,
		history:     history,
		guard:       guard,
		tokens:      tokens,
		config:      config,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// WithClock replaces the service clock. Used by tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// LoginResult is a successful login
type LoginResult struct {
	Token     string
	User      *models.User
	ExpiresAt time.Time
}

// LoginRequest identifies one login attempt
type LoginRequest struct {
	Username  string
	Password  string
	Address   string
	UserAgent string
}

// Login runs the guarded credential check. Errors:
//   - models.ErrRateLimited: address locked, credentials were not looked at
//   - models.ErrUserNotFound, models.ErrBadPassword: counted as failures
//   - models.ErrInternalServer: store or signing failure, not counted
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	now := s.now()

	locked, err := s.guard.CheckLocked(ctx, req.Address, now)
	if err != nil {
		s.logger.Error("login guard check failed", slog.String("address", req.Address), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if locked {
		s.logger.Warn("login rejected: address locked", slog.String("address", req.Address))
		s.recordOutcome(ctx, req, now, pkglogger.EventLoginRateLimited, models.FailureReasonRateLimited)
		return nil, models.ErrRateLimited
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.fail(ctx, req, now, models.FailureReasonUserNotFound)
			return nil, models.ErrUserNotFound
		}
		s.logger.Error("failed to get user by username", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, pkgauth.ErrMismatch) {
			// Unusable stored hash. Still a failed attempt from the caller's side.
			s.logger.Error("stored password hash rejected", slog.Int64("user_id", user.ID), slog.Any("error", err))
		}
		s.fail(ctx, req, now, models.FailureReasonBadPassword)
		return nil, models.ErrBadPassword
	}

	if err := s.guard.RecordSuccess(ctx, req.Address); err != nil {
		s.logger.Error("failed to clear login failures", slog.String("address", req.Address), slog.Any("error", err))
	}

	token, err := s.tokens.Issue(user, now)
	if err != nil {
		s.logger.Error("failed to issue session token", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.Int64("user_id", user.ID))
	s.recordOutcome(ctx, req, now, pkglogger.EventLoginSuccess, "")

	return &LoginResult{
		Token:     token,
		User:      user,
		ExpiresAt: now.Add(auth.SessionExpiry),
	}, nil
}

// fail counts a credential failure, records it and applies the failure delay.
func (s *AuthService) fail(ctx context.Context, req LoginRequest, now time.Time, reason string) {
	if err := s.guard.RecordFailure(ctx, req.Address, now); err != nil {
		s.logger.Error("failed to record login failure", slog.String("address", req.Address), slog.Any("error", err))
	}
	s.logger.Info("login failed", slog.String("reason", reason), slog.String("address", req.Address))
	s.recordOutcome(ctx, req, now, pkglogger.EventLoginFailure, reason)
	s.config.Timing.WaitFrom(ctx, now)
}

func (s *AuthService) recordOutcome(ctx context.Context, req LoginRequest, now time.Time, event, reason string) {
	success := reason == ""

	if s.auditLogger != nil {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     event,
			Username:      req.Username,
			IPAddress:     req.Address,
			UserAgent:     req.UserAgent,
			Success:       success,
			FailureReason: reason,
		})
	}

	if s.history == nil || s.config.HistoryRetention <= 0 {
		return
	}

	attempt := &models.LoginAttempt{
		Username:    req.Username,
		IPAddress:   req.Address,
		UserAgent:   req.UserAgent,
		AttemptTime: now,
		Success:     success,
		ExpiresAt:   now.Add(s.config.HistoryRetention),
	}
	if !success {
		attempt.FailureReason = &reason
	}
	if err := s.history.RecordAttempt(ctx, attempt); err != nil {
		s.logger.Error("failed to record login history", slog.Any("error", err))
	}
}

// Register stores a new account. There is no existence pre-check; the
// store's unique constraint decides. Failures are *models.RegistrationError.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return &models.RegistrationError{Cause: err}
	}

	user, err := s.users.Create(ctx, username, hash)
	if err != nil {
		regErr := &models.RegistrationError{Cause: err}
		if errors.Is(regErr, models.ErrDuplicateUser) {
			s.logger.Info("registration rejected: username taken")
		} else {
			s.logger.Error("failed to create user", slog.Any("error", err))
		}
		s.audit(pkglogger.EventRegister, username, false, "insert_failed")
		return regErr
	}

	s.logger.Info("user registered", slog.Int64("user_id", user.ID))
	s.audit(pkglogger.EventRegister, username, true, "")
	return nil
}

func (s *AuthService) audit(event, username string, success bool, reason string) {
	if s.auditLogger == nil {
		return
	}
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     event,
		Username:      username,
		Success:       success,
		FailureReason: reason,
	})
}

// EnsureAdmin creates the bootstrap account when no user exists yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, counter UserCounter, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	n, err := counter.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if err := s.Register(ctx, username, password); err != nil {
		return err
	}
	s.logger.Info("bootstrap admin account created", slog.String("username", username))
	return nil
}

// UserCounter reports how many accounts exist
type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}
