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

const monitorColumns = `org_code, content_type, name, interval_minutes, sites, max_results, keyword, enabled,
	last_executed, last_succeeded, last_duration_ms, snapshot, state, open_event_kind, open_event_id,
	error_message, retry_count, page_title, created_at, updated_at`

type MonitorRepository struct {
	db *database.PostgresDB
}

func NewMonitorRepository(db *database.PostgresDB) *MonitorRepository {
	return &MonitorRepository{db: db}
}

func (r *MonitorRepository) Save(ctx context.Context, monitor *models.Monitor) error {
	var exists bool

	err := r.db.Pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM monitors WHERE org_code = $1 AND content_type = $2 AND name = $3)",
		monitor.OrgCode, monitor.ContentType, monitor.Name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("ошибка при проверке существования монитора: %w", err)
	}

	if exists {
		return &customerrors.ErrMonitorAlreadyExists{GUID: monitor.GUID()}
	}

	var id int64

	err = r.db.Pool.QueryRow(ctx,
		`INSERT INTO monitors (`+monitorColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		 RETURNING id`,
		monitorArgs(monitor)...).Scan(&id)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении монитора: %w", err)
	}

	monitor.ID = id

	return nil
}

func (r *MonitorRepository) FindByID(ctx context.Context, id int64) (*models.Monitor, error) {
	row := r.db.Pool.QueryRow(ctx,
		"SELECT id, "+monitorColumns+" FROM monitors WHERE id = $1", id)

	monitor, err := scanMonitor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrMonitorNotFound{ID: id}
		}

		return nil, fmt.Errorf("ошибка при поиске монитора по ID: %w", err)
	}

	return monitor, nil
}

func (r *MonitorRepository) FindDue(ctx context.Context, batchSize int, afterID int64) ([]*models.Monitor, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, `+monitorColumns+` FROM monitors
		 WHERE id > $2
		   AND enabled
		   AND state IN ('WAITING', 'RESUMING', 'RETRYING')
		   AND (state = 'RESUMING'
		        OR last_executed IS NULL
		        OR last_executed + make_interval(mins => interval_minutes) <= now())
		 ORDER BY id
		 LIMIT $1`,
		batchSize, afterID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе мониторов к проверке: %w", err)
	}
	defer rows.Close()

	return scanMonitors(rows)
}

func (r *MonitorRepository) Update(ctx context.Context, monitor *models.Monitor) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE monitors SET
			interval_minutes = $2, sites = $3, max_results = $4, keyword = $5, enabled = $6,
			last_executed = $7, last_succeeded = $8, last_duration_ms = $9, snapshot = $10,
			state = $11, open_event_kind = $12, open_event_id = $13,
			error_message = $14, retry_count = $15, page_title = $16, updated_at = $17
		 WHERE id = $1`,
		monitor.ID,
		monitor.IntervalMinutes, monitor.Sites, monitor.MaxResults, monitor.Keyword, monitor.Enabled,
		nullableTime(monitor.LastExecuted), nullableTime(monitor.LastSucceeded), monitor.LastDuration.Milliseconds(),
		encodeSnapshot(monitor.Snapshot),
		monitor.State, nullableEventKind(monitor.OpenEvent), nullableEventID(monitor.OpenEvent),
		monitor.ErrorMessage, monitor.RetryCount, monitor.PageTitle, time.Now())
	if err != nil {
		return fmt.Errorf("ошибка при обновлении монитора: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrMonitorNotFound{ID: monitor.ID}
	}

	return nil
}

func (r *MonitorRepository) GetAll(ctx context.Context) ([]*models.Monitor, error) {
	rows, err := r.db.Pool.Query(ctx,
		"SELECT id, "+monitorColumns+" FROM monitors ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе всех мониторов: %w", err)
	}
	defer rows.Close()

	return scanMonitors(rows)
}

func monitorArgs(monitor *models.Monitor) []any {
	return []any{
		monitor.OrgCode, monitor.ContentType, monitor.Name,
		monitor.IntervalMinutes, monitor.Sites, monitor.MaxResults, monitor.Keyword, monitor.Enabled,
		nullableTime(monitor.LastExecuted), nullableTime(monitor.LastSucceeded), monitor.LastDuration.Milliseconds(),
		encodeSnapshot(monitor.Snapshot),
		monitor.State, nullableEventKind(monitor.OpenEvent), nullableEventID(monitor.OpenEvent),
		monitor.ErrorMessage, monitor.RetryCount, monitor.PageTitle,
		monitor.CreatedAt, monitor.UpdatedAt,
	}
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
		return nil, fmt.Errorf("ошибка при чтении мониторов: %w", err)
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

func nullableEventKind(ref *models.EventRef) *string {
	if ref == nil {
		return nil
	}

	kind := string(ref.Kind)

	return &kind
}

func nullableEventID(ref *models.EventRef) *string {
	if ref == nil {
		return nil
	}

	id := ref.ID

	return &id
}
