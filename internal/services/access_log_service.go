package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/BradenHooton/scribe/internal/models"
)

// AccessLogRepository defines the visit log store
type AccessLogRepository interface {
	Create(ctx context.Context, entry *models.AccessLog) error
	List(ctx context.Context, f models.AccessLogFilter) ([]*models.AccessLog, int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountDistinctIPs(ctx context.Context) (int64, error)
	DailyCountsSince(ctx context.Context, since time.Time) ([]models.DailyCount, error)
	TopPaths(ctx context.Context, limit int) ([]models.PathCount, error)
}

const (
	DefaultLogPageSize = 10
	MaxLogPageSize     = 100
	TopPagesLimit      = 10
	statsDays          = 7

	accessLogBuffer = 256
)

// AccessLogQuery selects one page of the visit log. Nil bounds are open.
type AccessLogQuery struct {
	Page      int
	PageSize  int
	StartDate *time.Time
	EndDate   *time.Time
}

type Pagination struct {
	Current  int   `json:"current"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

type AccessLogPage struct {
	List       []*models.AccessLog `json:"list"`
	Pagination Pagination          `json:"pagination"`
}

// AccessLogService records visits off the request path and answers the
// dashboard queries.
type AccessLogService struct {
	repo    AccessLogRepository
	logger  *slog.Logger
	now     func() time.Time
	entries chan *models.AccessLog
}

func NewAccessLogService(repo AccessLogRepository, logger *slog.Logger) *AccessLogService {
	return &AccessLogService{
		repo:    repo,
		logger:  logger,
		now:     time.Now,
		entries: make(chan *models.AccessLog, accessLogBuffer),
	}
}

// WithClock replaces the service clock. Used by tests.
func (s *AccessLogService) WithClock(now func() time.Time) *AccessLogService {
	s.now = now
	return s
}

// Record queues a visit for storage and returns immediately. When the queue
// is full the visit is dropped.
func (s *AccessLogService) Record(entry *models.AccessLog) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	select {
	case s.entries <- entry:
	default:
		s.logger.Warn("access log queue full, dropping visit", slog.String("path", entry.Path))
	}
}

// Run stores queued visits until ctx is cancelled, then drains what is left.
func (s *AccessLogService) Run(ctx context.Context) {
	for {
		select {
		case entry := <-s.entries:
			s.store(ctx, entry)
		case <-ctx.Done():
			s.drain()
			s.logger.Info("access log writer stopped")
			return
		}
	}
}

func (s *AccessLogService) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case entry := <-s.entries:
			s.store(ctx, entry)
		default:
			return
		}
	}
}

func (s *AccessLogService) store(ctx context.Context, entry *models.AccessLog) {
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to record visit", slog.String("path", entry.Path), slog.Any("error", err))
	}
}

// List returns one page of visits, newest first
func (s *AccessLogService) List(ctx context.Context, q AccessLogQuery) (*AccessLogPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultLogPageSize
	}
	if q.PageSize > MaxLogPageSize {
		q.PageSize = MaxLogPageSize
	}

	logs, total, err := s.repo.List(ctx, models.AccessLogFilter{
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Limit:     q.PageSize,
		Offset:    (q.Page - 1) * q.PageSize,
	})
	if err != nil {
		s.logger.Error("failed to list access logs", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &AccessLogPage{
		List:       logs,
		Pagination: Pagination{Current: q.Page, PageSize: q.PageSize, Total: total},
	}, nil
}

// Stats summarises the visit log. "Today" starts at local midnight and the
// weekly series covers today and the six days before it.
func (s *AccessLogService) Stats(ctx context.Context) (*models.AccessStats, error) {
	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := todayStart.AddDate(0, 0, -(statsDays - 1))

	var (
		stats models.AccessStats
		err   error
	)

	if stats.Today, err = s.repo.CountSince(ctx, todayStart); err != nil {
		return nil, s.statsError(err)
	}
	if stats.WeeklyStats, err = s.repo.DailyCountsSince(ctx, weekStart); err != nil {
		return nil, s.statsError(err)
	}
	if stats.TopPages, err = s.repo.TopPaths(ctx, TopPagesLimit); err != nil {
		return nil, s.statsError(err)
	}
	if stats.Total, err = s.repo.Count(ctx); err != nil {
		return nil, s.statsError(err)
	}
	if stats.UniqueIPs, err = s.repo.CountDistinctIPs(ctx); err != nil {
		return nil, s.statsError(err)
	}

	if stats.WeeklyStats == nil {
		stats.WeeklyStats = []models.DailyCount{}
	}
	if stats.TopPages == nil {
		stats.TopPages = []models.PathCount{}
	}
	return &stats, nil
}

func (s *AccessLogService) statsError(err error) error {
	s.logger.Error("failed to compute access stats", slog.Any("error", err))
	return models.ErrInternalServer
}
