package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/BradenHooton/scribe/internal/models"
	pkghttp "github.com/BradenHooton/scribe/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const claimsContextKey contextKey = "session"

// Messages returned to the client by SessionMiddleware
const (
	MsgNotLoggedIn  = "未登录"
	MsgInvalidToken = "token无效"
)

// TokenValidator is satisfied by *TokenManager
type TokenValidator interface {
	Validate(token string) (*models.SessionClaims, error)
}

// SessionMiddleware admits requests carrying a valid session token and
// stores its claims in the request context. The token is the second
// space-separated field of the Authorization header ("Bearer <token>").
func SessionMiddleware(tv TokenValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(tv, r.Header.Get("Authorization"))
			switch {
			case errors.Is(err, models.ErrUnauthenticated):
				pkghttp.WriteUnauthorized(w, MsgNotLoggedIn)
				return
			case err != nil:
				pkghttp.WriteUnauthorized(w, MsgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func authenticate(tv TokenValidator, header string) (*models.SessionClaims, error) {
	parts := strings.Split(header, " ")
	if len(parts) < 2 || parts[1] == "" {
		return nil, models.ErrUnauthenticated
	}
	return tv.Validate(parts[1])
}

// WithClaims returns a copy of ctx carrying claims
func WithClaims(ctx context.Context, claims *models.SessionClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the session claims set by SessionMiddleware, or
// nil outside a protected route.
func ClaimsFromContext(ctx context.Context) *models.SessionClaims {
	claims, ok := ctx.Value(claimsContextKey).(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
