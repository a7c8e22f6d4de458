//go:build integration

package integration

import (
	"fmt"
	"time"
)

// TestUser returns unique credentials for one test.
func TestUser(suffix string) (username, password string) {
	username = fmt.Sprintf("u%d-%s", time.Now().UnixNano()%1_000_000_000, suffix)
	password = "TestPassword123!"
	return
}
