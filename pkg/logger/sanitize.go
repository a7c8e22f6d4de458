package logger

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// SanitizedUsername masks a username for logging, keeping the first rune
// ("alice" -> "a****"). Failed logins carry attacker-chosen names, some of
// which are mistyped passwords.
func SanitizedUsername(username string) string {
	if username == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(username)
	rest := utf8.RuneCountInString(username[size:])
	return string(first) + strings.Repeat("*", rest)
}

// RedactedAttr returns a redacted slog attribute for sensitive values
// In production, returns "[REDACTED]"; in development, returns the actual value
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, "[REDACTED]")
	}
	return slog.String(key, value)
}

// SanitizeQueryString reports whether a query string mentions a sensitive
// parameter and should be dropped from request logs entirely.
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := []string{
		"password",
		"token",
		"secret",
		"auth",
		"email",
	}

	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
