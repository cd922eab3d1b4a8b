package repository_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/central-university-dev/go-content-watch/internal/config"
	"github.com/central-university-dev/go-content-watch/internal/database"
	customerrors "github.com/central-university-dev/go-content-watch/internal/domain/errors"
	"github.com/central-university-dev/go-content-watch/internal/domain/models"
	"github.com/central-university-dev/go-content-watch/internal/watcher/repository"
)

var (
	testDB *database.PostgresDB
	logger *slog.Logger
)

func setupTestDatabase(ctx context.Context) (*database.PostgresDB, func(), error) {
	dbName := "testdb"
	dbUser := "testuser"
	dbPassword := "testpassword"

	container, err := postgres.Run(ctx,
		"postgres:16",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(10*time.Second),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось запустить контейнер postgres: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось получить хост контейнера: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось получить порт контейнера: %w", err)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, host, port.Port(), dbName)

	migrationsPath, _ := filepath.Abs("../../../migrations")
	migrateURL := fmt.Sprintf("file://%s", migrationsPath)

	m, err := migrate.New(migrateURL, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось создать экземпляр migrate: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return nil, nil, fmt.Errorf("не удалось применить миграции: %w", err)
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return nil, nil, fmt.Errorf("ошибка закрытия источника миграций: %w", sourceErr)
	}

	if dbErr != nil {
		return nil, nil, fmt.Errorf("ошибка закрытия подключения БД миграций: %w", dbErr)
	}

	logger.Info("Миграции успешно применены к тестовой БД")

	testCfg := &config.Config{
		DatabaseURL:     dsn,
		DatabaseMaxConn: 5,
	}

	db, err := database.NewPostgresDB(ctx, testCfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось подключиться к тестовой БД: %w", err)
	}

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			logger.Error("Не удалось остановить контейнер postgres", "error", err)
		}

		logger.Info("Контейнер postgres остановлен")
	}

	return db, cleanup, nil
}

func TestMain(m *testing.M) {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	exitCode := func() int {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		var cleanup func()

		var err error

		testDB, cleanup, err = setupTestDatabase(ctx)
		if err != nil {
			logger.Error("Ошибка при настройке тестовой БД", "error", err)
			return 1
		}

		code := m.Run()

		cleanup()

		return code
	}()

	os.Exit(exitCode)
}

func clearTables(ctx context.Context, t *testing.T) {
	t.Helper()

	tables := []string{
		"monitor_events",
		"published_content",
		"monitors",
	}
	for _, table := range tables {
		query := fmt.Sprintf("DELETE FROM %s", table)
		_, err := testDB.Pool.Exec(ctx, query)

		require.NoErrorf(t, err, "Failed to clear table %s", table)
	}

	sequences := []string{
		"monitors_id_seq",
		"published_content_id_seq",
	}
	for _, seq := range sequences {
		query := fmt.Sprintf("ALTER SEQUENCE %s RESTART WITH 1", seq)

		_, err := testDB.Pool.Exec(ctx, query)
		if err != nil {
			t.Logf("Warning: failed to restart sequence %s: %v", seq, err)
		}
	}
}

func newMonitorFixture(accessType config.AccessType, name string) *models.Monitor {
	monitor := models.NewMonitor(
		fmt.Sprintf("org-%s", accessType),
		name,
		models.Page,
		60,
		[]string{"example.com"},
	)
	monitor.Snapshot = models.NewSnapshot(models.Page, []models.Teaser{
		{Title: "Новость", URL: "https://example.com/1", Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
	})

	return monitor
}

//nolint:funlen,gocognit // сценарии для обеих реализаций доступа к БД
func runTestsForConfig(t *testing.T, accessType config.AccessType) {
	t.Helper()

	ctx := context.Background()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	testCfg := &config.Config{
		DatabaseAccessType: accessType,
	}

	factory := repository.NewFactory(testDB, testCfg, quiet)

	monitorRepo, err := factory.CreateMonitorRepository()
	require.NoError(t, err, "Ошибка создания MonitorRepository для %s", accessType)

	eventRepo, err := factory.CreateEventRepository()
	require.NoError(t, err, "Ошибка создания EventRepository для %s", accessType)

	contentRepo, err := factory.CreateContentRepository()
	require.NoError(t, err, "Ошибка создания ContentRepository для %s", accessType)

	t.Run("MonitorRepository Save and FindByID", func(t *testing.T) {
		clearTables(ctx, t)

		monitor := newMonitorFixture(accessType, fmt.Sprintf("news-%d", time.Now().UnixNano()))

		err := monitorRepo.Save(ctx, monitor)
		require.NoError(t, err, "Save failed for %s", accessType)
		require.NotZero(t, monitor.ID, "Monitor ID should be set after save for %s", accessType)

		found, err := monitorRepo.FindByID(ctx, monitor.ID)
		require.NoError(t, err, "FindByID failed for %s", accessType)
		assert.Equal(t, monitor.OrgCode, found.OrgCode)
		assert.Equal(t, monitor.Name, found.Name)
		assert.Equal(t, models.Page, found.ContentType)
		assert.Equal(t, models.StateWaiting, found.State)
		assert.Equal(t, []string{"example.com"}, found.Sites)
		assert.True(t, monitor.Snapshot.Equal(found.Snapshot), "Snapshot mismatch for %s", accessType)
		assert.Nil(t, found.OpenEvent)

		duplicate := newMonitorFixture(accessType, monitor.Name)
		err = monitorRepo.Save(ctx, duplicate)
		require.Error(t, err, "Saving duplicate should fail for %s", accessType)

		var existsErr *customerrors.ErrMonitorAlreadyExists

		assert.ErrorAs(t, err, &existsErr, "Error should be ErrMonitorAlreadyExists for %s", accessType)
	})

	t.Run("MonitorRepository FindByID not found", func(t *testing.T) {
		clearTables(ctx, t)

		_, err := monitorRepo.FindByID(ctx, -1)
		require.Error(t, err, "FindByID for non-existent ID should fail for %s", accessType)

		var notFoundErr *customerrors.ErrMonitorNotFound

		assert.ErrorAs(t, err, &notFoundErr, "Error type should be ErrMonitorNotFound for %s", accessType)
	})

	t.Run("MonitorRepository Update", func(t *testing.T) {
		clearTables(ctx, t)

		monitor := newMonitorFixture(accessType, fmt.Sprintf("update-%d", time.Now().UnixNano()))
		require.NoError(t, monitorRepo.Save(ctx, monitor))

		require.NoError(t, monitor.BeginExecution())
		require.True(t, monitor.MarkChanged("7e6b59a1-4f7c-4a36-9a58-2d54ae4b9f01"))
		monitor.PageTitle = "Новости компании"
		monitor.LastDuration = 1500 * time.Millisecond

		err := monitorRepo.Update(ctx, monitor)
		require.NoError(t, err, "Update failed for %s", accessType)

		updated, err := monitorRepo.FindByID(ctx, monitor.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StateChanged, updated.State)
		require.NotNil(t, updated.OpenEvent)
		assert.Equal(t, models.KindChange, updated.OpenEvent.Kind)
		assert.Equal(t, "7e6b59a1-4f7c-4a36-9a58-2d54ae4b9f01", updated.OpenEvent.ID)
		assert.Equal(t, "Новости компании", updated.PageTitle)
		assert.Equal(t, 1500*time.Millisecond, updated.LastDuration)
		assert.WithinDuration(t, monitor.LastExecuted, updated.LastExecuted, time.Second)

		ghost := newMonitorFixture(accessType, "ghost")
		ghost.ID = -42
		err = monitorRepo.Update(ctx, ghost)
		require.Error(t, err, "Update for non-existent monitor should fail for %s", accessType)

		var notFoundErr *customerrors.ErrMonitorNotFound

		assert.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("MonitorRepository FindDue (Pagination)", func(t *testing.T) {
		clearTables(ctx, t)

		threeHoursAgo := time.Now().Add(-3 * time.Hour).Truncate(time.Microsecond)

		neverExecuted := newMonitorFixture(accessType, "due-never")
		overdue := newMonitorFixture(accessType, "due-overdue")
		overdue.LastExecuted = threeHoursAgo
		resuming := newMonitorFixture(accessType, "due-resuming")
		resuming.State = models.StateResuming
		retrying := newMonitorFixture(accessType, "due-retrying")
		retrying.State = models.StateRetrying
		retrying.LastExecuted = threeHoursAgo

		fresh := newMonitorFixture(accessType, "not-due-fresh")
		fresh.LastExecuted = time.Now()
		disabled := newMonitorFixture(accessType, "not-due-disabled")
		disabled.Disable()
		changed := newMonitorFixture(accessType, "not-due-changed")
		changed.State = models.StateChanged

		for _, monitor := range []*models.Monitor{neverExecuted, overdue, resuming, retrying, fresh, disabled, changed} {
			require.NoError(t, monitorRepo.Save(ctx, monitor), "Failed to save monitor %s", monitor.Name)
		}

		page1, err := monitorRepo.FindDue(ctx, 2, 0)
		require.NoError(t, err, "FindDue page 1 failed for %s", accessType)
		require.Len(t, page1, 2, "Page 1 should have 2 monitors for %s", accessType)

		// страница 1 проверена: мониторы покидают выборку, как после
		// реального тика планировщика
		for _, monitor := range page1 {
			require.NoError(t, monitor.BeginExecution())
			monitor.CompleteExecution(monitor.Snapshot, time.Second, "")
			require.NoError(t, monitorRepo.Update(ctx, monitor))
		}

		page2, err := monitorRepo.FindDue(ctx, 2, page1[len(page1)-1].ID)
		require.NoError(t, err, "FindDue page 2 failed for %s", accessType)
		require.Len(t, page2, 2, "Page 2 should have 2 monitors for %s", accessType)

		page3, err := monitorRepo.FindDue(ctx, 2, page2[len(page2)-1].ID)
		require.NoError(t, err, "FindDue page 3 failed for %s", accessType)
		assert.Empty(t, page3, "Page 3 should be empty for %s", accessType)

		dueIDs := []int64{}
		for _, monitor := range append(page1, page2...) {
			dueIDs = append(dueIDs, monitor.ID)
		}

		assert.ElementsMatch(t, []int64{neverExecuted.ID, overdue.ID, resuming.ID, retrying.ID}, dueIDs,
			"Checked monitors must not shift the next page for %s", accessType)
	})

	t.Run("EventRepository SaveChange and FindChangeByID", func(t *testing.T) {
		clearTables(ctx, t)

		monitor := newMonitorFixture(accessType, fmt.Sprintf("events-%d", time.Now().UnixNano()))
		require.NoError(t, monitorRepo.Save(ctx, monitor))

		after := models.NewSnapshot(models.Page, []models.Teaser{
			{Title: "Новость", URL: "https://example.com/1", Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
			{Title: "Свежая новость", URL: "https://example.com/2", Date: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)},
		})
		event := models.NewChangeEvent(monitor, monitor.Snapshot, after, 50, 2*time.Second)

		err := eventRepo.SaveChange(ctx, event)
		require.NoError(t, err, "SaveChange failed for %s", accessType)

		found, err := eventRepo.FindChangeByID(ctx, event.ID)
		require.NoError(t, err, "FindChangeByID failed for %s", accessType)
		assert.Equal(t, event.MonitorID, found.MonitorID)
		assert.Equal(t, models.ChangeOpen, found.Status)
		assert.InDelta(t, 50.0, found.DiffPercent, 0.001)
		assert.True(t, monitor.Snapshot.Equal(found.Before), "Before snapshot mismatch for %s", accessType)
		assert.True(t, after.Equal(found.After), "After snapshot mismatch for %s", accessType)

		err = eventRepo.UpdateStatus(ctx, models.KindChange, event.ID, string(models.ChangeConfirmed), "operator")
		require.NoError(t, err, "UpdateStatus failed for %s", accessType)

		confirmed, err := eventRepo.FindChangeByID(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ChangeConfirmed, confirmed.Status)
		assert.Equal(t, "operator", confirmed.UpdatedBy)

		_, err = eventRepo.FindChangeByID(ctx, "f0e9d8c7-0000-4000-8000-000000000000")
		require.Error(t, err, "FindChangeByID for a ghost event must fail for %s", accessType)

		var eventNotFoundErr *customerrors.ErrEventNotFound

		assert.ErrorAs(t, err, &eventNotFoundErr, "Ghost event must map to ErrEventNotFound for %s", accessType)
	})

	t.Run("EventRepository other kinds and UpdateStatus not found", func(t *testing.T) {
		clearTables(ctx, t)

		monitor := newMonitorFixture(accessType, fmt.Sprintf("kinds-%d", time.Now().UnixNano()))
		require.NoError(t, monitorRepo.Save(ctx, monitor))

		alert := models.NewAlertEvent(monitor, models.AlertInactivity, time.Now().AddDate(0, 0, -90))
		require.NoError(t, eventRepo.SaveAlert(ctx, alert), "SaveAlert failed for %s", accessType)

		review := models.NewReviewEvent(monitor, models.ReviewUnreliable, time.Now())
		require.NoError(t, eventRepo.SaveReview(ctx, review), "SaveReview failed for %s", accessType)

		failure := models.NewFailureEvent(monitor, models.FailureIntermittent, "session-1")
		require.NoError(t, eventRepo.SaveFailure(ctx, failure), "SaveFailure failed for %s", accessType)

		require.NoError(t, eventRepo.UpdateStatus(ctx, models.KindAlert, alert.ID, string(models.AlertClosed), "operator"))
		require.NoError(t, eventRepo.UpdateStatus(ctx, models.KindReview, review.ID, string(models.ReviewDone), "operator"))
		require.NoError(t, eventRepo.UpdateStatus(ctx, models.KindFailure, failure.ID, string(models.FailureFixed), "operator"))

		err := eventRepo.UpdateStatus(ctx, models.KindAlert, "b2f3a3f0-0000-0000-0000-000000000000", string(models.AlertClosed), "operator")
		require.Error(t, err, "UpdateStatus for non-existent event should fail for %s", accessType)

		var notFoundErr *customerrors.ErrEventNotFound

		assert.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("ContentRepository FindByTitle and FindByKey", func(t *testing.T) {
		clearTables(ctx, t)

		orgCode := fmt.Sprintf("org-%s", accessType)

		_, err := testDB.Pool.Exec(ctx,
			`INSERT INTO published_content (org_code, title, url, video_id, published_date) VALUES
			($1, 'Отчёт за квартал', 'https://example.com/old', '', '2025-03-01T00:00:00Z'),
			($1, 'Отчёт за квартал', 'https://example.com/older', '', '2025-01-01T00:00:00Z'),
			($1, 'Запись эфира', '', 'vid-1', '2025-02-01T00:00:00Z')`,
			orgCode,
		)
		require.NoError(t, err, "Failed to seed published_content")

		byTitle, err := contentRepo.FindByTitle(ctx, orgCode, "Отчёт за квартал")
		require.NoError(t, err, "FindByTitle failed for %s", accessType)
		assert.Equal(t, "https://example.com/old", byTitle.URL, "FindByTitle should return the newest row for %s", accessType)

		byURL, err := contentRepo.FindByKey(ctx, orgCode, "https://example.com/older")
		require.NoError(t, err, "FindByKey by url failed for %s", accessType)
		assert.Equal(t, "Отчёт за квартал", byURL.Title)

		byVideoID, err := contentRepo.FindByKey(ctx, orgCode, "vid-1")
		require.NoError(t, err, "FindByKey by video id failed for %s", accessType)
		assert.Equal(t, "Запись эфира", byVideoID.Title)

		_, err = contentRepo.FindByTitle(ctx, orgCode, "Нет такой публикации")
		require.Error(t, err, "FindByTitle for unknown title should fail for %s", accessType)

		var notFoundErr *customerrors.ErrContentNotFound

		assert.ErrorAs(t, err, &notFoundErr)
	})
}

func TestMonitorRepository_Implementations(t *testing.T) {
	t.Run("SQL Implementation", func(t *testing.T) {
		runTestsForConfig(t, config.SQLAccess)
	})
	t.Run("Squirrel Implementation", func(t *testing.T) {
		runTestsForConfig(t, config.SquirrelAccess)
	})
}
