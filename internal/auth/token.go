package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/BradenHooton/scribe/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// SessionExpiry is how long an issued session token stays valid.
const SessionExpiry = 2 * time.Hour

// TokenManager signs and verifies session tokens. Tokens are stateless:
// there is no revocation list, a token is valid until it expires.
type TokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager using SessionExpiry and the wall clock
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: SessionExpiry,
		now:    time.Now,
	}
}

// WithClock returns a copy of tm that reads time from now. Used by tests.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	clone := *tm
	clone.now = now
	return &clone
}

// Issue signs a token for user valid from now until now+expiry.
func (tm *TokenManager) Issue(user *models.User, now time.Time) (string, error) {
	claims := &models.SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, nil
}

// Validate verifies signature and expiry. Every failure wraps
// models.ErrInvalidToken.
func (tm *TokenManager) Validate(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return tm.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", models.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, models.ErrInvalidToken
	}

	return claims, nil
}
