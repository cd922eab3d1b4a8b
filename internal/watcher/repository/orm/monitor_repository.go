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

var monitorColumns = []string{
	"id", "org_code", "content_type", "name",
	"interval_minutes", "sites", "max_results", "keyword", "enabled",
	"last_executed", "last_succeeded", "last_duration_ms", "snapshot",
	"state", "open_event_kind", "open_event_id",
	"error_message", "retry_count", "page_title", "created_at", "updated_at",
}

type MonitorRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewMonitorRepository(db *database.PostgresDB) *MonitorRepository {
	return &MonitorRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *MonitorRepository) Save(ctx context.Context, monitor *models.Monitor) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	existsQuery := r.sq.Select("1").From("monitors").
		Where(sq.Eq{
			"org_code":     monitor.OrgCode,
			"content_type": monitor.ContentType,
			"name":         monitor.Name,
		}).Limit(1)

	query, args, err := existsQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "проверка существования монитора", Cause: err}
	}

	var exists bool

	err = querier.QueryRow(ctx, "SELECT EXISTS("+query+")", args...).Scan(&exists)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "проверка существования монитора", Cause: err}
	}

	if exists {
		return &customerrors.ErrMonitorAlreadyExists{GUID: monitor.GUID()}
	}

	insertQuery := r.sq.Insert("monitors").
		Columns(monitorColumns[1:]...).
		Values(
			monitor.OrgCode, monitor.ContentType, monitor.Name,
			monitor.IntervalMinutes, monitor.Sites, monitor.MaxResults, monitor.Keyword, monitor.Enabled,
			nullableTime(monitor.LastExecuted), nullableTime(monitor.LastSucceeded), monitor.LastDuration.Milliseconds(),
			encodeSnapshot(monitor.Snapshot),
			monitor.State, openEventKind(monitor.OpenEvent), openEventID(monitor.OpenEvent),
			monitor.ErrorMessage, monitor.RetryCount, monitor.PageTitle,
			monitor.CreatedAt, monitor.UpdatedAt,
		).
		Suffix("RETURNING id")

	query, args, err = insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "вставка монитора", Cause: err}
	}

	var id int64

	err = querier.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "вставка монитора", Cause: err}
	}

	monitor.ID = id

	return nil
}

func (r *MonitorRepository) FindByID(ctx context.Context, id int64) (*models.Monitor, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := r.sq.Select(monitorColumns...).From("monitors").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск монитора", Cause: err}
	}

	monitor, err := scanMonitor(querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrMonitorNotFound{ID: id}
		}

		return nil, &customerrors.ErrSQLScan{Entity: "монитор", Cause: err}
	}

	return monitor, nil
}

func (r *MonitorRepository) FindDue(ctx context.Context, batchSize int, afterID int64) ([]*models.Monitor, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	dueQuery := r.sq.Select(monitorColumns...).From("monitors").
		Where(sq.Gt{"id": afterID}).
		Where(sq.Eq{"enabled": true}).
		Where(sq.Eq{"state": []string{"WAITING", "RESUMING", "RETRYING"}}).
		Where(sq.Or{
			sq.Eq{"state": "RESUMING"},
			sq.Eq{"last_executed": nil},
			sq.Expr("last_executed + make_interval(mins => interval_minutes) <= now()"),
		}).
		OrderBy("id").
		Limit(uint64(batchSize)) //nolint:gosec // G115: размер батча из конфига

	query, args, err := dueQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск мониторов к проверке", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "поиск мониторов к проверке", Cause: err}
	}
	defer rows.Close()

	return scanMonitors(rows)
}

func (r *MonitorRepository) Update(ctx context.Context, monitor *models.Monitor) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("monitors").
		Set("interval_minutes", monitor.IntervalMinutes).
		Set("sites", monitor.Sites).
		Set("max_results", monitor.MaxResults).
		Set("keyword", monitor.Keyword).
		Set("enabled", monitor.Enabled).
		Set("last_executed", nullableTime(monitor.LastExecuted)).
		Set("last_succeeded", nullableTime(monitor.LastSucceeded)).
		Set("last_duration_ms", monitor.LastDuration.Milliseconds()).
		Set("snapshot", encodeSnapshot(monitor.Snapshot)).
		Set("state", monitor.State).
		Set("open_event_kind", openEventKind(monitor.OpenEvent)).
		Set("open_event_id", openEventID(monitor.OpenEvent)).
		Set("error_message", monitor.ErrorMessage).
		Set("retry_count", monitor.RetryCount).
		Set("page_title", monitor.PageTitle).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": monitor.ID})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "обновление монитора", Cause: err}
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "обновление монитора", Cause: err}
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrMonitorNotFound{ID: monitor.ID}
	}

	return nil
}

func (r *MonitorRepository) GetAll(ctx context.Context) ([]*models.Monitor, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := r.sq.Select(monitorColumns...).From("monitors").OrderBy("id").ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "выборка всех мониторов", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "выборка всех мониторов", Cause: err}
	}
	defer rows.Close()

	return scanMonitors(rows)
}

func scanMonitors(rows pgx.Rows) ([]*models.Monitor, error) {
	var monitors []*models.Monitor

	for rows.Next() {
		monitor, err := scanMonitor(rows)
		if err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "монитор", Cause: err}
		}

		monitors = append(monitors, monitor)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "чтение мониторов", Cause: err}
	}

	return monitors, nil
}

//nolint:funlen // сканирование всех колонок монитора
func scanMonitor(row pgx.Row) (*models.Monitor, error) {
	var (
		monitor       models.Monitor
		lastExecuted  *time.Time
		lastSucceeded *time.Time
		durationMs    int64
		snapshot      []byte
		openKind      *string
		openID        *string
	)

	err := row.Scan(
		&monitor.ID,
		&monitor.OrgCode, &monitor.ContentType, &monitor.Name,
		&monitor.IntervalMinutes, &monitor.Sites, &monitor.MaxResults, &monitor.Keyword, &monitor.Enabled,
		&lastExecuted, &lastSucceeded, &durationMs, &snapshot,
		&monitor.State, &openKind, &openID,
		&monitor.ErrorMessage, &monitor.RetryCount, &monitor.PageTitle,
		&monitor.CreatedAt, &monitor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastExecuted != nil {
		monitor.LastExecuted = *lastExecuted
	}

	if lastSucceeded != nil {
		monitor.LastSucceeded = *lastSucceeded
	}

	monitor.LastDuration = time.Duration(durationMs) * time.Millisecond

	if len(snapshot) > 0 {
		decoded, decodeErr := models.DecodeSnapshot(snapshot)
		if decodeErr != nil {
			return nil, decodeErr
		}

		monitor.Snapshot = decoded
	} else {
		monitor.Snapshot = models.EmptySnapshot(monitor.ContentType)
	}

	if openKind != nil && openID != nil {
		monitor.OpenEvent = &models.EventRef{Kind: models.EventKind(*openKind), ID: *openID}
	}

	return &monitor, nil
}

func encodeSnapshot(s *models.Snapshot) []byte {
	if s == nil {
		return nil
	}

	return models.EncodeSnapshot(s)
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}

func openEventKind(ref *models.EventRef) *string {
	if ref == nil {
		return nil
	}

	kind := string(ref.Kind)

	return &kind
}

func openEventID(ref *models.EventRef) *string {
	if ref == nil {
		return nil
	}

	id := ref.ID

	return &id
}
