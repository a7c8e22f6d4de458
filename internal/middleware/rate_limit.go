package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	pkghttp "github.com/BradenHooton/scribe/pkg/http"
)

const MsgTooManyRequests = "请求过于频繁，请稍后再试"

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	// InBand answers over-limit requests with 200 {code:1} instead of 429,
	// the way every other login failure is reported.
	InBand bool
}

// Per-IP caps. These only bound request volume; the login lockout policy
// lives in the login guard.
func LoginRateLimit() RateLimitConfig {
	return RateLimitConfig{Requests: 30, Window: time.Minute, InBand: true}
}
func LikeRateLimit() RateLimitConfig { return RateLimitConfig{Requests: 60, Window: time.Minute} }
func UploadRateLimit() RateLimitConfig { return RateLimitConfig{Requests: 20, Window: time.Minute} }

// RateLimitByIP limits requests per client address. The address is resolved
// with the same trusted-proxy rules as the login guard.
func RateLimitByIP(config RateLimitConfig, ipConfig *pkghttp.IPConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.Requests,
		config.Window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return pkghttp.ExtractClientIP(r, ipConfig), nil
		}, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if config.InBand {
				pkghttp.WriteFail(w, MsgTooManyRequests)
				return
			}
			pkghttp.WriteTooManyRequests(w, MsgTooManyRequests)
		}),
	)
}
