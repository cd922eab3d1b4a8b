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

type EventRepository struct {
	db *database.PostgresDB
}

func NewEventRepository(db *database.PostgresDB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) SaveChange(ctx context.Context, event *models.ChangeEvent) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO monitor_events
			(id, kind, monitor_id, org_code, guid, status, notes, updated_by,
			 before_snapshot, after_snapshot, diff_percent, execution_time_ms, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		event.ID, models.KindChange, event.MonitorID, event.OrgCode, event.GUID,
		event.Status, event.Notes, event.UpdatedBy,
		encodeSnapshot(event.Before), encodeSnapshot(event.After),
		event.DiffPercent, event.ExecutionTime.Milliseconds(),
		event.CreatedAt, event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении события изменения: %w", err)
	}

	return nil
}

func (r *EventRepository) SaveAlert(ctx context.Context, event *models.AlertEvent) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO monitor_events
			(id, kind, monitor_id, org_code, guid, status, reason, notes, updated_by,
			 effective_from, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		event.ID, models.KindAlert, event.MonitorID, event.OrgCode, event.GUID,
		event.Status, event.Reason, event.Notes, event.UpdatedBy,
		nullableTime(event.EffectiveFrom), event.CreatedAt, event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении события тревоги: %w", err)
	}

	return nil
}

func (r *EventRepository) SaveReview(ctx context.Context, event *models.ReviewEvent) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO monitor_events
			(id, kind, monitor_id, org_code, guid, status, reason, notes, updated_by,
			 review_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		event.ID, models.KindReview, event.MonitorID, event.OrgCode, event.GUID,
		event.Status, event.Reason, event.Notes, event.UpdatedBy,
		nullableTime(event.ReviewAt), event.CreatedAt, event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении запроса на ревизию: %w", err)
	}

	return nil
}

func (r *EventRepository) SaveFailure(ctx context.Context, event *models.FailureEvent) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO monitor_events
			(id, kind, monitor_id, org_code, guid, status, reason, notes, updated_by,
			 review_at, session_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		event.ID, models.KindFailure, event.MonitorID, event.OrgCode, event.GUID,
		event.Status, event.Reason, event.Notes, event.UpdatedBy,
		nullableTime(event.ReviewAt), event.SessionID, event.CreatedAt, event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении события сбоя: %w", err)
	}

	return nil
}

func (r *EventRepository) UpdateStatus(ctx context.Context, kind models.EventKind, id, status, user string) error {
	tag, err := r.db.Pool.Exec(ctx,
		"UPDATE monitor_events SET status = $3, updated_by = $4, updated_at = $5 WHERE id = $1 AND kind = $2",
		id, kind, status, user, time.Now())
	if err != nil {
		return fmt.Errorf("ошибка при обновлении статуса события: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrEventNotFound{ID: id}
	}

	return nil
}

func (r *EventRepository) FindChangeByID(ctx context.Context, id string) (*models.ChangeEvent, error) {
	var (
		event         models.ChangeEvent
		before, after []byte
		executionMs   int64
	)

	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, monitor_id, org_code, guid, status, notes, updated_by,
			before_snapshot, after_snapshot, diff_percent, execution_time_ms, created_at, updated_at
		 FROM monitor_events WHERE id = $1 AND kind = $2`,
		id, models.KindChange).Scan(
		&event.ID, &event.MonitorID, &event.OrgCode, &event.GUID, &event.Status, &event.Notes, &event.UpdatedBy,
		&before, &after, &event.DiffPercent, &executionMs, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrEventNotFound{ID: id}
		}

		return nil, fmt.Errorf("ошибка при поиске события изменения: %w", err)
	}

	event.ExecutionTime = time.Duration(executionMs) * time.Millisecond

	if event.Before, err = decodeSnapshot(before); err != nil {
		return nil, err
	}

	if event.After, err = decodeSnapshot(after); err != nil {
		return nil, err
	}

	return &event, nil
}

func decodeSnapshot(data []byte) (*models.Snapshot, error) {
	if len(data) == 0 {
		return nil, nil //nolint:nilnil // отсутствие снапшота не является ошибкой
	}

	return models.DecodeSnapshot(data)
}
