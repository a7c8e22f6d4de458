package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/scribe/internal/auth"
	"github.com/BradenHooton/scribe/internal/models"
	"github.com/BradenHooton/scribe/internal/services"
	pkghttp "github.com/BradenHooton/scribe/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext adds session claims to the request context
func WithAuthContext(req *http.Request, userID int64, username string) *http.Request {
	claims := &models.SessionClaims{UserID: userID, Username: username}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

// WithURLParam sets a chi URL parameter on the request
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// DecodeEnvelope checks the status and decodes the {code,msg} envelope
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int) pkghttp.Response {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp pkghttp.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to decode response JSON")
	return resp
}

// AssertEnvelope checks status, code and msg in one go
func AssertEnvelope(t *testing.T, w *httptest.ResponseRecorder, expectedStatus, expectedCode int, expectedMsg string) pkghttp.Response {
	t.Helper()
	resp := DecodeEnvelope(t, w, expectedStatus)
	assert.Equal(t, expectedCode, resp.Code, "code mismatch")
	assert.Equal(t, expectedMsg, resp.Msg, "msg mismatch")
	return resp
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc    func(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error)
	RegisterFunc func(ctx context.Context, username, password string) error
}

func (m *MockAuthService) Login(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrBadPassword
	}
	return m.LoginFunc(ctx, req)
}

func (m *MockAuthService) Register(ctx context.Context, username, password string) error {
	if m.RegisterFunc == nil {
		return nil
	}
	return m.RegisterFunc(ctx, username, password)
}

// MockArticleService implements ArticleServiceInterface for testing
type MockArticleService struct {
	ListFunc   func(ctx context.Context) ([]*models.Article, error)
	ViewFunc   func(ctx context.Context, id int64) (*models.Article, error)
	CreateFunc func(ctx context.Context, in services.ArticleInput) (*models.Article, error)
	UpdateFunc func(ctx context.Context, id int64, in services.ArticleInput) (*models.Article, error)
	DeleteFunc func(ctx context.Context, id int64) error
	LikeFunc   func(ctx context.Context, id int64) (int64, error)
}

func (m *MockArticleService) List(ctx context.Context) ([]*models.Article, error) {
	if m.ListFunc == nil {
		return nil, nil
	}
	return m.ListFunc(ctx)
}

func (m *MockArticleService) View(ctx context.Context, id int64) (*models.Article, error) {
	if m.ViewFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.ViewFunc(ctx, id)
}

func (m *MockArticleService) Create(ctx context.Context, in services.ArticleInput) (*models.Article, error) {
	if m.CreateFunc == nil {
		return &models.Article{ID: 1, Title: in.Title}, nil
	}
	return m.CreateFunc(ctx, in)
}

func (m *MockArticleService) Update(ctx context.Context, id int64, in services.ArticleInput) (*models.Article, error) {
	if m.UpdateFunc == nil {
		return &models.Article{ID: id, Title: in.Title}, nil
	}
	return m.UpdateFunc(ctx, id, in)
}

func (m *MockArticleService) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, id)
}

func (m *MockArticleService) Like(ctx context.Context, id int64) (int64, error) {
	if m.LikeFunc == nil {
		return 1, nil
	}
	return m.LikeFunc(ctx, id)
}

// MockProfileService implements ProfileServiceInterface for testing
type MockProfileService struct {
	GetFunc  func(ctx context.Context) (*models.Profile, error)
	SaveFunc func(ctx context.Context, p *models.Profile) (*models.Profile, error)
}

func (m *MockProfileService) Get(ctx context.Context) (*models.Profile, error) {
	if m.GetFunc == nil {
		return nil, nil
	}
	return m.GetFunc(ctx)
}

func (m *MockProfileService) Save(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	if m.SaveFunc == nil {
		return p, nil
	}
	return m.SaveFunc(ctx, p)
}

// MockUploadService implements UploadServiceInterface for testing
type MockUploadService struct {
	SaveFunc func(ctx context.Context, data []byte) (string, error)
}

func (m *MockUploadService) Save(ctx context.Context, data []byte) (string, error) {
	if m.SaveFunc == nil {
		return "/uploads/test.png", nil
	}
	return m.SaveFunc(ctx, data)
}

// MockAccessLogService implements AccessLogServiceInterface for testing
type MockAccessLogService struct {
	ListFunc  func(ctx context.Context, q services.AccessLogQuery) (*services.AccessLogPage, error)
	StatsFunc func(ctx context.Context) (*models.AccessStats, error)
}

func (m *MockAccessLogService) List(ctx context.Context, q services.AccessLogQuery) (*services.AccessLogPage, error) {
	if m.ListFunc == nil {
		return &services.AccessLogPage{List: []*models.AccessLog{}}, nil
	}
	return m.ListFunc(ctx, q)
}

func (m *MockAccessLogService) Stats(ctx context.Context) (*models.AccessStats, error) {
	if m.StatsFunc == nil {
		return &models.AccessStats{}, nil
	}
	return m.StatsFunc(ctx)
}
