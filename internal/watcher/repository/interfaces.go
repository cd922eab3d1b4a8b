package repository

import (
	"context"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

type MonitorRepository interface {
	Save(ctx context.Context, monitor *models.Monitor) error

	FindByID(ctx context.Context, id int64) (*models.Monitor, error)

	// FindDue возвращает включённые мониторы с id больше afterID, готовые
	// к проверке: WAITING с истёкшим интервалом, RESUMING и RETRYING.
	// Пагинация keyset-ная: проверенные мониторы покидают выборку, поэтому
	// OFFSET сдвигал бы следующую страницу под ногами.
	FindDue(ctx context.Context, batchSize int, afterID int64) ([]*models.Monitor, error)

	Update(ctx context.Context, monitor *models.Monitor) error

	GetAll(ctx context.Context) ([]*models.Monitor, error)
}

type EventRepository interface {
	SaveChange(ctx context.Context, event *models.ChangeEvent) error

	SaveAlert(ctx context.Context, event *models.AlertEvent) error

	SaveReview(ctx context.Context, event *models.ReviewEvent) error

	SaveFailure(ctx context.Context, event *models.FailureEvent) error

	UpdateStatus(ctx context.Context, kind models.EventKind, id, status, user string) error

	FindChangeByID(ctx context.Context, id string) (*models.ChangeEvent, error)
}

type ContentRepository interface {
	FindByTitle(ctx context.Context, orgCode, title string) (*models.PublishedContent, error)

	FindByKey(ctx context.Context, orgCode, key string) (*models.PublishedContent, error)
}
