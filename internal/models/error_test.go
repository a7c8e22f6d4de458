package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistrationError_Is(t *testing.T) {
	dup := &RegistrationError{Cause: fmt.Errorf("failed to create user: %w: duplicate key", ErrConflict)}
	other := &RegistrationError{Cause: errors.New("connection refused")}

	assert.ErrorIs(t, dup, ErrRegistrationFailed)
	assert.ErrorIs(t, dup, ErrDuplicateUser)
	assert.ErrorIs(t, dup, ErrConflict)

	assert.ErrorIs(t, other, ErrRegistrationFailed)
	assert.NotErrorIs(t, other, ErrDuplicateUser)

	assert.Equal(t, "registration failed: connection refused", other.Error())
}
