package services

import (
	"context"
	"errors"
	"testing"

	"github.com/BradenHooton/scribe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleService_Create_StoresPlainText(t *testing.T) {
	var stored *models.Article
	repo := &MockArticleRepository{
		CreateFunc: func(ctx context.Context, a *models.Article) (*models.Article, error) {
			stored = a
			a.ID = 42
			return a, nil
		},
	}
	service := NewArticleService(repo, discardLogger())

	created, err := service.Create(context.Background(), ArticleInput{
		Title:   "Hello",
		Content: "<p>First &amp; foremost</p><p>second</p>",
		Cover:   "cover.png",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, "First &amp; foremost\nsecond\n", stored.Content)
	require.NotNil(t, stored.Cover)
	assert.Equal(t, "/uploads/cover.png", *stored.Cover)
}

func TestArticleService_Create_NoCover(t *testing.T) {
	var stored *models.Article
	repo := &MockArticleRepository{
		CreateFunc: func(ctx context.Context, a *models.Article) (*models.Article, error) {
			stored = a
			return a, nil
		},
	}
	service := NewArticleService(repo, discardLogger())

	_, err := service.Create(context.Background(), ArticleInput{Title: "t", Content: "body"})

	require.NoError(t, err)
	assert.Nil(t, stored.Cover)
}

func TestArticleService_Create_EmptyContent(t *testing.T) {
	called := false
	repo := &MockArticleRepository{
		CreateFunc: func(ctx context.Context, a *models.Article) (*models.Article, error) {
			called = true
			return a, nil
		},
	}
	service := NewArticleService(repo, discardLogger())

	for _, body := range []string{"", "   ", "<p><br></p>", "<p>&nbsp;</p>"} {
		_, err := service.Create(context.Background(), ArticleInput{Title: "t", Content: body})
		assert.ErrorIs(t, err, models.ErrEmptyContent, "content %q", body)
	}
	assert.False(t, called)
}

func TestArticleService_Create_ImageOnlyContentIsNotEmpty(t *testing.T) {
	service := NewArticleService(&MockArticleRepository{}, discardLogger())

	_, err := service.Create(context.Background(), ArticleInput{Title: "t", Content: `<p><img src="/uploads/a.png"></p>`})
	assert.NoError(t, err)
}

func TestArticleService_Update(t *testing.T) {
	repo := &MockArticleRepository{
		UpdateFunc: func(ctx context.Context, a *models.Article) (*models.Article, error) {
			if a.ID != 5 {
				return nil, models.ErrNotFound
			}
			return a, nil
		},
	}
	service := NewArticleService(repo, discardLogger())

	updated, err := service.Update(context.Background(), 5, ArticleInput{Title: "new", Content: "<b>x</b>", Cover: "https://img.example.com/c.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "x", updated.Content)
	assert.Equal(t, "https://img.example.com/c.jpg", *updated.Cover)

	_, err = service.Update(context.Background(), 6, ArticleInput{Title: "new", Content: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestArticleService_ErrorTranslation(t *testing.T) {
	boom := errors.New("pool closed")
	repo := &MockArticleRepository{
		ListFunc:   func(ctx context.Context) ([]*models.Article, error) { return nil, boom },
		ViewFunc:   func(ctx context.Context, id int64) (*models.Article, error) { return nil, models.ErrNotFound },
		DeleteFunc: func(ctx context.Context, id int64) error { return models.ErrNotFound },
		LikeFunc:   func(ctx context.Context, id int64) (int64, error) { return 0, boom },
	}
	service := NewArticleService(repo, discardLogger())
	ctx := context.Background()

	_, err := service.List(ctx)
	assert.ErrorIs(t, err, models.ErrInternalServer)

	_, err = service.View(ctx, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, service.Delete(ctx, 1), models.ErrNotFound)

	_, err = service.Like(ctx, 1)
	assert.ErrorIs(t, err, models.ErrInternalServer)
}

func TestArticleService_ViewAndLike(t *testing.T) {
	repo := &MockArticleRepository{
		ViewFunc: func(ctx context.Context, id int64) (*models.Article, error) {
			return &models.Article{ID: id, Views: 10}, nil
		},
		LikeFunc: func(ctx context.Context, id int64) (int64, error) { return 3, nil },
	}
	service := NewArticleService(repo, discardLogger())

	a, err := service.View(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(10), a.Views)

	likes, err := service.Like(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(3), likes)
}
