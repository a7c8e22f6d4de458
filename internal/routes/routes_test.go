package routes

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/scribe/internal/auth"
	"github.com/BradenHooton/scribe/internal/handlers"
	"github.com/BradenHooton/scribe/internal/models"
	"github.com/BradenHooton/scribe/internal/storage"
	pkghttp "github.com/BradenHooton/scribe/pkg/http"
)

const testSecret = "routes-test-secret-0123456789abcdef"

func newTestRouter(t *testing.T, uploadsDir string) (http.Handler, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager(testSecret)

	var uploads http.Handler
	if uploadsDir != "" {
		store, err := storage.NewFilesystemStore(uploadsDir, "/uploads", slog.New(slog.NewTextHandler(io.Discard, nil)))
		require.NoError(t, err)
		uploads = store.Handler()
	}

	r := chi.NewRouter()
	RegisterRoutes(r, Handlers{
		Auth:     handlers.NewAuthHandler(&handlers.MockAuthService{}, nil, false),
		Articles: handlers.NewArticleHandler(&handlers.MockArticleService{}, nil, nil),
		Profile:  handlers.NewProfileHandler(&handlers.MockProfileService{}, nil, nil),
		Upload:   handlers.NewUploadHandler(&handlers.MockUploadService{}, 1024, nil, nil),
		Logs:     handlers.NewAccessLogHandler(&handlers.MockAccessLogService{}, time.UTC),
	}, tokens, nil, uploads)
	return r, tokens
}

func decode(t *testing.T, w *httptest.ResponseRecorder) pkghttp.Response {
	t.Helper()
	var resp pkghttp.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	router, _ := newTestRouter(t, "")

	protected := []struct{ method, path string }{
		{"GET", "/api/user/me"},
		{"POST", "/api/article"},
		{"PUT", "/api/article/1"},
		{"DELETE", "/api/article/1"},
		{"PUT", "/api/profile"},
		{"GET", "/api/log"},
		{"GET", "/api/log/stats"},
	}

	for _, p := range protected {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			resp := decode(t, w)
			assert.Equal(t, pkghttp.CodeUnauthorized, resp.Code)
			assert.Equal(t, auth.MsgNotLoggedIn, resp.Msg)
		})
	}
}

func TestProtectedRoute_InvalidToken(t *testing.T) {
	router, _ := newTestRouter(t, "")

	req := httptest.NewRequest("GET", "/api/log", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.MsgInvalidToken, decode(t, w).Msg)
}

func TestProtectedRoute_ValidToken(t *testing.T) {
	router, tokens := newTestRouter(t, "")
	token, err := tokens.Issue(&models.User{ID: 4, Username: "admin"}, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, "admin", data["username"])
}

func TestPublicRoutes(t *testing.T) {
	router, _ := newTestRouter(t, "")

	for _, path := range []string{"/api/article", "/api/profile"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, pkghttp.CodeOK, decode(t, w).Code, path)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/article/3/like", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadsAreServed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1_ab.png"), []byte("png"), 0o644))
	router, _ := newTestRouter(t, dir)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/uploads/1_ab.png", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/uploads/", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "1_ab.png")
}
