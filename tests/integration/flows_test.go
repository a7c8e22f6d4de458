//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/scribe/internal/handlers"
	"github.com/BradenHooton/scribe/internal/models"
	"github.com/BradenHooton/scribe/internal/services"
)

var testDB *TestDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	db, err := SetupTestDatabase(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "integration setup: %v\n", err)
		os.Exit(1)
	}

	testDB = db
	code := m.Run()

	_ = db.Teardown(ctx)
	os.Exit(code)
}

func newServer(t *testing.T) *TestServer {
	t.Helper()
	require.NoError(t, testDB.CleanupTables(context.Background()))

	ts, err := NewTestServer(testDB.DB, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(ts.Close)
	return ts
}

func login(t *testing.T, ts *TestServer, username, password string) *Envelope {
	t.Helper()
	resp, err := ts.Request(http.MethodPost, "/api/user/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env, err := ParseEnvelope(resp)
	require.NoError(t, err)
	return env
}

func TestRegisterLoginAndPublish(t *testing.T) {
	ts := newServer(t)
	username, password := TestUser("writer")

	resp, err := ts.Request(http.MethodPost, "/api/user/register", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.NoError(t, err)
	env, err := ParseEnvelope(resp)
	require.NoError(t, err)
	assert.Equal(t, 0, env.Code)
	assert.Equal(t, handlers.MsgRegisterOK, env.Msg)

	env = login(t, ts, username, password)
	require.Equal(t, 0, env.Code)
	require.NotEmpty(t, env.Token)
	token := env.Token

	resp, err = ts.Request(http.MethodPost, "/api/article", "", map[string]string{"title": "x", "content": "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp, err = ts.Request(http.MethodPost, "/api/article", token, map[string]string{
		"title":   "Hello",
		"content": "<p>Hello &amp; welcome</p>",
	})
	require.NoError(t, err)
	env, err = ParseEnvelope(resp)
	require.NoError(t, err)
	assert.Equal(t, handlers.MsgCreated, env.Msg)

	resp, err = ts.Request(http.MethodGet, "/api/article", "", nil)
	require.NoError(t, err)
	env, err = ParseEnvelope(resp)
	require.NoError(t, err)

	var articles []models.Article
	require.NoError(t, json.Unmarshal(env.Data, &articles))
	require.Len(t, articles, 1)
	assert.Equal(t, "Hello", articles[0].Title)
	assert.Equal(t, "Hello &amp; welcome\n", articles[0].Content)
}

func TestLoginLockoutPersistsInDatabase(t *testing.T) {
	ts := newServer(t)
	username, password := TestUser("owner")
	_, err := SeedUser(context.Background(), ts.DB, username, password)
	require.NoError(t, err)

	for i := 0; i < services.MaxLoginAttempts; i++ {
		env := login(t, ts, username, "wrong-password")
		assert.Equal(t, 1, env.Code)
		assert.Equal(t, handlers.MsgBadPassword, env.Msg, "attempt %d", i+1)
	}

	// correct password is refused while locked
	env := login(t, ts, username, password)
	assert.Equal(t, 1, env.Code)
	assert.Equal(t, handlers.MsgLoginRateLimit, env.Msg)
	assert.Empty(t, env.Token)

	var failures int
	err = ts.DB.Pool.QueryRow(context.Background(),
		`SELECT failure_count FROM login_lockouts WHERE address = $1`, "127.0.0.1").Scan(&failures)
	require.NoError(t, err)
	assert.Equal(t, services.MaxLoginAttempts, failures)

	// rewind the last failure past the window
	_, err = ts.DB.Pool.Exec(context.Background(),
		`UPDATE login_lockouts SET last_failure_at = $1`, time.Now().Add(-services.LoginLockWindow-time.Minute))
	require.NoError(t, err)

	env = login(t, ts, username, password)
	assert.Equal(t, 0, env.Code)
	assert.NotEmpty(t, env.Token)

	attempts, err := CountLoginAttempts(context.Background(), ts.DB, username)
	require.NoError(t, err)
	assert.Equal(t, services.MaxLoginAttempts+2, attempts)
}

func TestVisitsAreLoggedAndCounted(t *testing.T) {
	ts := newServer(t)
	username, password := TestUser("viewer")
	_, err := SeedUser(context.Background(), ts.DB, username, password)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		resp, err := ts.Request(http.MethodGet, "/api/article", "", nil)
		require.NoError(t, err)
		resp.Body.Close()
	}

	token := login(t, ts, username, password).Token
	require.NotEmpty(t, token)

	require.Eventually(t, func() bool {
		resp, err := ts.Request(http.MethodGet, "/api/log/stats", token, nil)
		if err != nil {
			return false
		}
		env, err := ParseEnvelope(resp)
		if err != nil || env.Code != 0 {
			return false
		}
		var stats models.AccessStats
		if err := json.Unmarshal(env.Data, &stats); err != nil {
			return false
		}
		// three article listings plus the login
		return stats.Total >= 4 && stats.UniqueIPs == 1
	}, 5*time.Second, 100*time.Millisecond)
}
