package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost matches the work factor existing password hashes were created
// with, so old accounts keep verifying.
const BcryptCost = 10

// ErrMismatch is returned by ComparePassword when the password is wrong.
var ErrMismatch = errors.New("password does not match")

// maxPasswordBytes is the longest input bcrypt reads. Comparison already
// ignores anything after it.
const maxPasswordBytes = 72

// HashPassword hashes password with BcryptCost. Input beyond 72 bytes is
// truncated, matching what ComparePassword checks.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	raw := []byte(password)
	if len(raw) > maxPasswordBytes {
		raw = raw[:maxPasswordBytes]
	}
	hashedBytes, err := bcrypt.GenerateFromPassword(raw, BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// ComparePassword returns nil on a match, ErrMismatch on a wrong password,
// and any other error when the stored hash is unusable.
func ComparePassword(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}

// RandomHex returns n random bytes hex-encoded (2n characters).
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
