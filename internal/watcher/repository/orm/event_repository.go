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

type EventRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewEventRepository(db *database.PostgresDB) *EventRepository {
	return &EventRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *EventRepository) SaveChange(ctx context.Context, event *models.ChangeEvent) error {
	values := baseValues(&event.EventBase, models.KindChange, string(event.Status))
	values["before_snapshot"] = encodeSnapshot(event.Before)
	values["after_snapshot"] = encodeSnapshot(event.After)
	values["diff_percent"] = event.DiffPercent
	values["execution_time_ms"] = event.ExecutionTime.Milliseconds()

	return r.execInsert(ctx, values, "вставка события изменения")
}

func (r *EventRepository) SaveAlert(ctx context.Context, event *models.AlertEvent) error {
	values := baseValues(&event.EventBase, models.KindAlert, string(event.Status))
	values["reason"] = event.Reason
	values["effective_from"] = event.EffectiveFrom

	return r.execInsert(ctx, values, "вставка события тревоги")
}

func (r *EventRepository) SaveReview(ctx context.Context, event *models.ReviewEvent) error {
	values := baseValues(&event.EventBase, models.KindReview, string(event.Status))
	values["reason"] = event.Reason
	values["review_at"] = event.ReviewAt

	return r.execInsert(ctx, values, "вставка события проверки")
}

func (r *EventRepository) SaveFailure(ctx context.Context, event *models.FailureEvent) error {
	values := baseValues(&event.EventBase, models.KindFailure, string(event.Status))
	values["reason"] = event.Reason
	values["review_at"] = event.ReviewAt
	values["session_id"] = event.SessionID

	return r.execInsert(ctx, values, "вставка события сбоя")
}

func (r *EventRepository) UpdateStatus(ctx context.Context, kind models.EventKind, id, status, user string) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("monitor_events").
		Set("status", status).
		Set("updated_by", user).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "kind": kind})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "обновление статуса события", Cause: err}
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "обновление статуса события", Cause: err}
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrEventNotFound{ID: id}
	}

	return nil
}

func (r *EventRepository) FindChangeByID(ctx context.Context, id string) (*models.ChangeEvent, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(
		"id", "monitor_id", "org_code", "guid", "status",
		"before_snapshot", "after_snapshot", "diff_percent", "execution_time_ms",
		"notes", "updated_by", "created_at", "updated_at",
	).From("monitor_events").Where(sq.Eq{"id": id, "kind": models.KindChange})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск события изменения", Cause: err}
	}

	var (
		event       models.ChangeEvent
		before      []byte
		after       []byte
		durationMs  int64
		diffPercent float64
	)

	err = querier.QueryRow(ctx, query, args...).Scan(
		&event.ID, &event.MonitorID, &event.OrgCode, &event.GUID, &event.Status,
		&before, &after, &diffPercent, &durationMs,
		&event.Notes, &event.UpdatedBy, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrEventNotFound{ID: id}
		}

		return nil, &customerrors.ErrSQLScan{Entity: "событие изменения", Cause: err}
	}

	event.DiffPercent = diffPercent
	event.ExecutionTime = time.Duration(durationMs) * time.Millisecond

	event.Before, err = decodeSnapshot(before)
	if err != nil {
		return nil, err
	}

	event.After, err = decodeSnapshot(after)
	if err != nil {
		return nil, err
	}

	return &event, nil
}

func baseValues(base *models.EventBase, kind models.EventKind, status string) map[string]interface{} {
	return map[string]interface{}{
		"id":         base.ID,
		"kind":       kind,
		"monitor_id": base.MonitorID,
		"org_code":   base.OrgCode,
		"guid":       base.GUID,
		"status":     status,
		"notes":      base.Notes,
		"updated_by": base.UpdatedBy,
		"created_at": base.CreatedAt,
		"updated_at": base.UpdatedAt,
	}
}

func (r *EventRepository) execInsert(ctx context.Context, values map[string]interface{}, operation string) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := r.sq.Insert("monitor_events").SetMap(values).ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: operation, Cause: err}
	}

	_, err = querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}

	return nil
}

//nolint:nilnil // пустой снимок хранится как NULL
func decodeSnapshot(data []byte) (*models.Snapshot, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return models.DecodeSnapshot(data)
}
