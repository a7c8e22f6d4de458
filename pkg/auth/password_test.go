package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_UsesConfiguredCost(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword() = %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost() = %v", err)
	}
	if cost != BcryptCost {
		t.Errorf("cost = %d, want %d", cost, BcryptCost)
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, _ := HashPassword("same-password")
	b, _ := HashPassword("same-password")
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
}

func TestComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword() = %v", err)
	}

	tests := []struct {
		name     string
		hash     string
		password string
		wantErr  error
		anyErr   bool
	}{
		{name: "match", hash: hash, password: "correct horse"},
		{name: "mismatch", hash: hash, password: "battery staple", wantErr: ErrMismatch},
		{name: "corrupt hash", hash: "not-a-bcrypt-hash", password: "x", anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ComparePassword(tt.hash, tt.password)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ComparePassword() = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil || errors.Is(err, ErrMismatch) {
					t.Errorf("ComparePassword() = %v, want a non-mismatch error", err)
				}
			default:
				if err != nil {
					t.Errorf("ComparePassword() = %v, want nil", err)
				}
			}
		})
	}
}

func TestRandomHex(t *testing.T) {
	s, err := RandomHex(6)
	if err != nil {
		t.Fatalf("RandomHex() = %v", err)
	}
	if len(s) != 12 {
		t.Errorf("len = %d, want 12", len(s))
	}
	if strings.Trim(s, "0123456789abcdef") != "" {
		t.Errorf("not lowercase hex: %q", s)
	}
}

func TestHashPassword_LongPassword(t *testing.T) {
	long := strings.Repeat("a", 80)

	hash, err := HashPassword(long)
	if err != nil {
		t.Fatalf("HashPassword(80 bytes) = %v, want nil", err)
	}
	if err := ComparePassword(hash, long); err != nil {
		t.Errorf("ComparePassword(same 80 bytes) = %v, want nil", err)
	}
	// only the first 72 bytes count, on both sides
	if err := ComparePassword(hash, strings.Repeat("a", 72)); err != nil {
		t.Errorf("ComparePassword(72-byte prefix) = %v, want nil", err)
	}
	if err := ComparePassword(hash, strings.Repeat("a", 71)); !errors.Is(err, ErrMismatch) {
		t.Errorf("ComparePassword(71 bytes) = %v, want ErrMismatch", err)
	}
}
