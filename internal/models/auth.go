package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims carried by a session token.
// The JSON names match what the frontend decodes: id, username, exp.
type SessionClaims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
