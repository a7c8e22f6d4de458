package middleware

import (
	"net/http"
	"strings"
)

// SecurityHeadersConfig holds security headers configuration
type SecurityHeadersConfig struct {
	Env string
}

// SecurityHeaders adds the response headers for a JSON API that also serves
// uploaded images to a frontend on another origin.
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	production := config.Env == "production"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("X-DNS-Prefetch-Control", "off")
			h.Set("Permissions-Policy", "camera=(), geolocation=(), microphone=(), payment=(), usb=()")

			// Nothing here is a document; uploads are plain images.
			h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")

			// The frontend embeds uploads cross-origin.
			if strings.HasPrefix(r.URL.Path, "/uploads/") {
				h.Set("Cross-Origin-Resource-Policy", "cross-origin")
			} else {
				h.Set("Cross-Origin-Resource-Policy", "same-site")
			}

			if production && (r.Header.Get("X-Forwarded-Proto") == "https" || r.TLS != nil) {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
