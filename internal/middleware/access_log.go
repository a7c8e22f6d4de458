package middleware

import (
	"net/http"
	"strings"

	"github.com/BradenHooton/scribe/internal/models"
	pkghttp "github.com/BradenHooton/scribe/pkg/http"
)

// VisitRecorder queues a visit for storage without blocking.
// Satisfied by *services.AccessLogService.
type VisitRecorder interface {
	Record(entry *models.AccessLog)
}

// TrackedPath reports whether visits to path go into the visit log: the
// home page, article and blog reads, and logins.
func TrackedPath(path string) bool {
	switch {
	case path == "/", path == "/api/user/login":
		return true
	case strings.HasPrefix(path, "/api/article"), strings.HasPrefix(path, "/api/blog"):
		return true
	}
	return false
}

// AccessLogger records tracked requests before handing them on. Recording
// never affects the response.
func AccessLogger(recorder VisitRecorder, ipConfig *pkghttp.IPConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if TrackedPath(r.URL.Path) {
				recorder.Record(&models.AccessLog{
					IP:        pkghttp.ExtractClientIP(r, ipConfig),
					Path:      r.URL.RequestURI(),
					Method:    r.Method,
					UserAgent: r.Header.Get("User-Agent"),
				})
			}
			next.ServeHTTP(w, r)
		})
	}
}
