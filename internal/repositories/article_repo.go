package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/scribe/internal/database"
	"github.com/BradenHooton/scribe/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ArticleRepository struct {
	pool *pgxpool.Pool
}

func NewArticleRepository(db *database.DB) *ArticleRepository {
	return &ArticleRepository{pool: db.Pool}
}

const articleColumns = `id, title, content, cover, views, likes, created_at, updated_at`

func scanArticleRow(scanner rowScanner) (*models.Article, error) {
	var a models.Article

	err := scanner.Scan(
		&a.ID, &a.Title, &a.Content, &a.Cover,
		&a.Views, &a.Likes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &a, nil
}

func scanArticleRows(rows pgx.Rows) ([]*models.Article, error) {
	defer rows.Close()

	articles := make([]*models.Article, 0)
	for rows.Next() {
		a, err := scanArticleRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}
	return articles, nil
}

// List returns every article, newest first
func (r *ArticleRepository) List(ctx context.Context) ([]*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	return scanArticleRows(rows)
}

// View counts a read and returns the article with the new view count.
func (r *ArticleRepository) View(ctx context.Context, id int64) (*models.Article, error) {
	query := `UPDATE articles SET views = views + 1 WHERE id = $1 RETURNING ` + articleColumns

	return scanArticleRow(r.pool.QueryRow(ctx, query, id))
}

func (r *ArticleRepository) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	query := `
		INSERT INTO articles (title, content, cover)
		VALUES ($1, $2, $3)
		RETURNING ` + articleColumns

	created, err := scanArticleRow(r.pool.QueryRow(ctx, query, a.Title, a.Content, a.Cover))
	if err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}
	return created, nil
}

// Update replaces title, content and cover. A missing article is
// models.ErrNotFound.
func (r *ArticleRepository) Update(ctx context.Context, a *models.Article) (*models.Article, error) {
	query := `
		UPDATE articles
		SET title = $2, content = $3, cover = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + articleColumns

	return scanArticleRow(r.pool.QueryRow(ctx, query, a.ID, a.Title, a.Content, a.Cover))
}

func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Like adds one like and returns the new total.
func (r *ArticleRepository) Like(ctx context.Context, id int64) (int64, error) {
	var likes int64
	err := r.pool.QueryRow(ctx, `UPDATE articles SET likes = likes + 1 WHERE id = $1 RETURNING likes`, id).Scan(&likes)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return likes, nil
}
