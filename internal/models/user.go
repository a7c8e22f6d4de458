package models

import (
	"time"
)

// User is a blog account. Only the owner ever logs in; registration is open.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
