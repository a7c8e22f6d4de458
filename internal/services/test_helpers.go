package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/scribe/internal/models"
	pkgauth "github.com/BradenHooton/scribe/pkg/auth"
)

// MockUserRepository implements UserRepository and UserCounter for testing
type MockUserRepository struct {
	GetByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	CreateFunc        func(ctx context.Context, username, passwordHash string) (*models.User, error)
	CountFunc         func(ctx context.Context) (int64, error)

	LookupCount int
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.LookupCount++
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, username, passwordHash)
	}
	return &models.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

// MockLoginHistoryRepository collects recorded attempts
type MockLoginHistoryRepository struct {
	mu       sync.Mutex
	Attempts []*models.LoginAttempt
	Err      error
}

func (m *MockLoginHistoryRepository) RecordAttempt(_ context.Context, attempt *models.LoginAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Attempts = append(m.Attempts, attempt)
	return m.Err
}

// MockSessionIssuer implements SessionIssuer for testing
type MockSessionIssuer struct {
	IssueFunc func(user *models.User, now time.Time) (string, error)
}

func (m *MockSessionIssuer) Issue(user *models.User, now time.Time) (string, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(user, now)
	}
	return "token-for-" + user.Username, nil
}

// MockLockoutRepository implements LockoutRepository for testing
type MockLockoutRepository struct {
	GetFunc           func(ctx context.Context, address string) (*models.LoginLockout, error)
	RecordFailureFunc func(ctx context.Context, address string, at time.Time) (*models.LoginLockout, error)
	ResetFunc         func(ctx context.Context, address string) error
	DeleteFunc        func(ctx context.Context, address string) error
}

func (m *MockLockoutRepository) Get(ctx context.Context, address string) (*models.LoginLockout, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, address)
	}
	return nil, models.ErrNotFound
}

func (m *MockLockoutRepository) RecordFailure(ctx context.Context, address string, at time.Time) (*models.LoginLockout, error) {
	if m.RecordFailureFunc != nil {
		return m.RecordFailureFunc(ctx, address, at)
	}
	return &models.LoginLockout{Address: address, FailureCount: 1, LastFailureAt: at}, nil
}

func (m *MockLockoutRepository) Reset(ctx context.Context, address string) error {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, address)
	}
	return nil
}

func (m *MockLockoutRepository) Delete(ctx context.Context, address string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, address)
	}
	return nil
}

// MockArticleRepository implements ArticleRepository for testing
type MockArticleRepository struct {
	ListFunc   func(ctx context.Context) ([]*models.Article, error)
	ViewFunc   func(ctx context.Context, id int64) (*models.Article, error)
	CreateFunc func(ctx context.Context, a *models.Article) (*models.Article, error)
	UpdateFunc func(ctx context.Context, a *models.Article) (*models.Article, error)
	DeleteFunc func(ctx context.Context, id int64) error
	LikeFunc   func(ctx context.Context, id int64) (int64, error)
}

func (m *MockArticleRepository) List(ctx context.Context) ([]*models.Article, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Article{}, nil
}

func (m *MockArticleRepository) View(ctx context.Context, id int64) (*models.Article, error) {
	if m.ViewFunc != nil {
		return m.ViewFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockArticleRepository) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	a.ID = 1
	return a, nil
}

func (m *MockArticleRepository) Update(ctx context.Context, a *models.Article) (*models.Article, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, a)
	}
	return a, nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockArticleRepository) Like(ctx context.Context, id int64) (int64, error) {
	if m.LikeFunc != nil {
		return m.LikeFunc(ctx, id)
	}
	return 1, nil
}

// MockProfileRepository implements ProfileRepository for testing
type MockProfileRepository struct {
	GetFunc  func(ctx context.Context) (*models.Profile, error)
	SaveFunc func(ctx context.Context, p *models.Profile) (*models.Profile, error)
}

func (m *MockProfileRepository) Get(ctx context.Context) (*models.Profile, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	return nil, models.ErrNotFound
}

func (m *MockProfileRepository) Save(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, p)
	}
	p.ID = 1
	return p, nil
}

// MockAccessLogRepository implements AccessLogRepository for testing
type MockAccessLogRepository struct {
	CreateFunc           func(ctx context.Context, entry *models.AccessLog) error
	ListFunc             func(ctx context.Context, f models.AccessLogFilter) ([]*models.AccessLog, int64, error)
	CountSinceFunc       func(ctx context.Context, since time.Time) (int64, error)
	CountFunc            func(ctx context.Context) (int64, error)
	CountDistinctIPsFunc func(ctx context.Context) (int64, error)
	DailyCountsSinceFunc func(ctx context.Context, since time.Time) ([]models.DailyCount, error)
	TopPathsFunc         func(ctx context.Context, limit int) ([]models.PathCount, error)
}

func (m *MockAccessLogRepository) Create(ctx context.Context, entry *models.AccessLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	return nil
}

func (m *MockAccessLogRepository) List(ctx context.Context, f models.AccessLogFilter) ([]*models.AccessLog, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return []*models.AccessLog{}, 0, nil
}

func (m *MockAccessLogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	if m.CountSinceFunc != nil {
		return m.CountSinceFunc(ctx, since)
	}
	return 0, nil
}

func (m *MockAccessLogRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *MockAccessLogRepository) CountDistinctIPs(ctx context.Context) (int64, error) {
	if m.CountDistinctIPsFunc != nil {
		return m.CountDistinctIPsFunc(ctx)
	}
	return 0, nil
}

func (m *MockAccessLogRepository) DailyCountsSince(ctx context.Context, since time.Time) ([]models.DailyCount, error) {
	if m.DailyCountsSinceFunc != nil {
		return m.DailyCountsSinceFunc(ctx, since)
	}
	return nil, nil
}

func (m *MockAccessLogRepository) TopPaths(ctx context.Context, limit int) ([]models.PathCount, error) {
	if m.TopPathsFunc != nil {
		return m.TopPathsFunc(ctx, limit)
	}
	return nil, nil
}

// MockBlobStore records Put calls
type MockBlobStore struct {
	PutFunc func(ctx context.Context, name, contentType string, data []byte) (string, error)

	Names []string
}

func (m *MockBlobStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	m.Names = append(m.Names, name)
	if m.PutFunc != nil {
		return m.PutFunc(ctx, name, contentType, data)
	}
	return "/uploads/" + name, nil
}

// NewTestUser returns a user whose password is password. Uses the real
// bcrypt cost, so keep calls per test low.
func NewTestUser(id int64, username, password string) *models.User {
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	return &models.User{ID: id, Username: username, PasswordHash: hash, CreatedAt: time.Now()}
}

// discardLogger is a logger for tests that don't inspect log output
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock is a settable clock for WithClock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
