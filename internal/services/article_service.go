package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/scribe/internal/models"
	"github.com/BradenHooton/scribe/pkg/content"
)

// ArticleRepository defines the article store
type ArticleRepository interface {
	List(ctx context.Context) ([]*models.Article, error)
	View(ctx context.Context, id int64) (*models.Article, error)
	Create(ctx context.Context, a *models.Article) (*models.Article, error)
	Update(ctx context.Context, a *models.Article) (*models.Article, error)
	Delete(ctx context.Context, id int64) error
	Like(ctx context.Context, id int64) (int64, error)
}

// ArticleInput is what the editor submits. Content is HTML.
type ArticleInput struct {
	Title   string
	Content string
	Cover   string
}

type ArticleService struct {
	repo   ArticleRepository
	logger *slog.Logger
}

func NewArticleService(repo ArticleRepository, logger *slog.Logger) *ArticleService {
	return &ArticleService{repo: repo, logger: logger}
}

// translate keeps ErrNotFound and turns anything else into ErrInternalServer
func (s *ArticleService) translate(op string, id int64, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrNotFound
	}
	s.logger.Error("article store error", slog.String("op", op), slog.Int64("article_id", id), slog.Any("error", err))
	return models.ErrInternalServer
}

func (s *ArticleService) List(ctx context.Context) ([]*models.Article, error) {
	articles, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.translate("list", 0, err)
	}
	return articles, nil
}

// View returns an article and counts the read
func (s *ArticleService) View(ctx context.Context, id int64) (*models.Article, error) {
	a, err := s.repo.View(ctx, id)
	if err != nil {
		return nil, s.translate("view", id, err)
	}
	return a, nil
}

// toArticle validates editor input and converts it to what is stored: plain
// text content and a normalised cover, nil when absent.
func toArticle(in ArticleInput) (*models.Article, error) {
	if content.IsEmpty(in.Content) {
		return nil, models.ErrEmptyContent
	}

	a := &models.Article{
		Title:   in.Title,
		Content: content.StripHTML(in.Content),
	}
	if cover := content.NormalizeImageURL(in.Cover); cover != "" {
		a.Cover = &cover
	}
	return a, nil
}

func (s *ArticleService) Create(ctx context.Context, in ArticleInput) (*models.Article, error) {
	a, err := toArticle(in)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, s.translate("create", 0, err)
	}
	s.logger.Info("article created", slog.Int64("article_id", created.ID))
	return created, nil
}

func (s *ArticleService) Update(ctx context.Context, id int64, in ArticleInput) (*models.Article, error) {
	a, err := toArticle(in)
	if err != nil {
		return nil, err
	}
	a.ID = id

	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return nil, s.translate("update", id, err)
	}
	s.logger.Info("article updated", slog.Int64("article_id", id))
	return updated, nil
}

func (s *ArticleService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate("delete", id, err)
	}
	s.logger.Info("article deleted", slog.Int64("article_id", id))
	return nil
}

// Like adds a like and returns the new total
func (s *ArticleService) Like(ctx context.Context, id int64) (int64, error) {
	likes, err := s.repo.Like(ctx, id)
	if err != nil {
		return 0, s.translate("like", id, err)
	}
	return likes, nil
}
