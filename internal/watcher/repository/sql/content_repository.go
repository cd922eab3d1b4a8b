package sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/central-university-dev/go-content-watch/internal/database"
	customerrors "github.com/central-university-dev/go-content-watch/internal/domain/errors"
	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

type ContentRepository struct {
	db *database.PostgresDB
}

func NewContentRepository(db *database.PostgresDB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) FindByTitle(ctx context.Context, orgCode, title string) (*models.PublishedContent, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT title, url, video_id, published_date FROM published_content
		 WHERE org_code = $1 AND title = $2
		 ORDER BY published_date DESC LIMIT 1`,
		orgCode, title)

	return scanContent(row, title)
}

func (r *ContentRepository) FindByKey(ctx context.Context, orgCode, key string) (*models.PublishedContent, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT title, url, video_id, published_date FROM published_content
		 WHERE org_code = $1 AND (url = $2 OR video_id = $2)
		 ORDER BY published_date DESC LIMIT 1`,
		orgCode, key)

	return scanContent(row, key)
}

func scanContent(row pgx.Row, key string) (*models.PublishedContent, error) {
	var (
		content     models.PublishedContent
		publishedAt *time.Time
	)

	err := row.Scan(&content.Title, &content.URL, &content.VideoID, &publishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrContentNotFound{Key: key}
		}

		return nil, fmt.Errorf("ошибка при поиске опубликованного контента: %w", err)
	}

	if publishedAt != nil {
		content.Date = *publishedAt
	}

	return &content, nil
}
