package logger

import (
	"context"
	"log/slog"
	"time"
)

// Audit event types
const (
	EventLoginSuccess     = "login_success"
	EventLoginFailure     = "login_failure"
	EventLoginRateLimited = "login_rate_limited"
	EventRegister         = "register"
	EventArticleCreate    = "article_create"
	EventArticleUpdate    = "article_update"
	EventArticleDelete    = "article_delete"
	EventProfileUpdate    = "profile_update"
	EventUpload           = "upload"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	Username      string
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger writes audit records through the application logger
type AuditLogger struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger, now: time.Now}
}

// LogAuthAttempt logs login and registration attempts
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", al.now().UTC().Format(time.RFC3339)),
	}

	if event.Username != "" {
		attrs = append(attrs, slog.String("username", SanitizedUsername(event.Username)))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}

// LogContentAction logs changes made by the signed-in author
func (al *AuditLogger) LogContentAction(eventType, username, ipAddress string, metadata map[string]string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "content"),
		slog.String("event_type", eventType),
		slog.String("username", username),
		slog.String("timestamp", al.now().UTC().Format(time.RFC3339)),
	}

	if ipAddress != "" {
		attrs = append(attrs, slog.String("ip_address", ipAddress))
	}

	for key, val := range metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
}
