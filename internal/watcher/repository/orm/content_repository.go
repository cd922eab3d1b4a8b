package orm

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/central-university-dev/go-content-watch/internal/database"
	customerrors "github.com/central-university-dev/go-content-watch/internal/domain/errors"
	"github.com/central-university-dev/go-content-watch/internal/domain/models"
	"github.com/central-university-dev/go-content-watch/pkg/txs"
)

type ContentRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewContentRepository(db *database.PostgresDB) *ContentRepository {
	return &ContentRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ContentRepository) FindByTitle(ctx context.Context, orgCode, title string) (*models.PublishedContent, error) {
	selectQuery := r.sq.Select("title", "url", "video_id", "published_date").
		From("published_content").
		Where(sq.Eq{"org_code": orgCode, "title": title}).
		OrderBy("published_date DESC").
		Limit(1)

	return r.findOne(ctx, selectQuery, title)
}

func (r *ContentRepository) FindByKey(ctx context.Context, orgCode, key string) (*models.PublishedContent, error) {
	selectQuery := r.sq.Select("title", "url", "video_id", "published_date").
		From("published_content").
		Where(sq.Eq{"org_code": orgCode}).
		Where(sq.Or{sq.Eq{"url": key}, sq.Eq{"video_id": key}}).
		OrderBy("published_date DESC").
		Limit(1)

	return r.findOne(ctx, selectQuery, key)
}

func (r *ContentRepository) findOne(ctx context.Context, builder sq.SelectBuilder, key string) (*models.PublishedContent, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск опубликованного контента", Cause: err}
	}

	var (
		content models.PublishedContent
		date    *time.Time
	)

	err = querier.QueryRow(ctx, query, args...).Scan(&content.Title, &content.URL, &content.VideoID, &date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrContentNotFound{Key: key}
		}

		return nil, &customerrors.ErrSQLScan{Entity: "опубликованный контент", Cause: err}
	}

	if date != nil {
		content.Date = *date
	}

	return &content, nil
}
