package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/central-university-dev/go-content-watch/internal/common/metrics"
	customerrors "github.com/central-university-dev/go-content-watch/internal/domain/errors"
	"github.com/central-university-dev/go-content-watch/internal/domain/models"
	"github.com/central-university-dev/go-content-watch/internal/watcher/compare"
	"github.com/central-university-dev/go-content-watch/internal/watcher/fetch"
)

type MonitorRepository interface {
	Save(ctx context.Context, monitor *models.Monitor) error

	FindByID(ctx context.Context, id int64) (*models.Monitor, error)

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

type EventNotifier interface {
	Notify(ctx context.Context, notification *models.EventNotification) error
}

type ExecutionLock interface {
	Acquire(ctx context.Context, monitorID int64) (release func(), acquired bool, err error)
}

type FetcherFactory interface {
	CreateFetcher(contentType models.ContentType) (fetch.Fetcher, error)
}

type SnapshotComparator interface {
	Compare(
		ctx context.Context,
		current, latest *models.Snapshot,
		lookup compare.ContentLookup,
		guardShrinkage bool,
	) (*compare.Result, error)
}

type Transactor interface {
	WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error
	WithSerializableTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error
}

type WatcherService struct {
	monitorRepo MonitorRepository
	eventRepo   EventRepository
	contentRepo ContentRepository
	notifier    EventNotifier
	execLock    ExecutionLock
	fetchers    FetcherFactory
	comparator  SnapshotComparator
	txManager   Transactor
	logger      *slog.Logger

	fetchTimeout        time.Duration
	maxFetchRetries     int
	shrinkageGuard      bool
	alertInactivityDays int
}

//nolint:funlen // конструктор только раскладывает зависимости
func NewWatcherService(
	monitorRepo MonitorRepository,
	eventRepo EventRepository,
	contentRepo ContentRepository,
	notifier EventNotifier,
	execLock ExecutionLock,
	fetchers FetcherFactory,
	comparator SnapshotComparator,
	txManager Transactor,
	fetchTimeout time.Duration,
	maxFetchRetries int,
	shrinkageGuard bool,
	alertInactivityDays int,
	logger *slog.Logger,
) *WatcherService {
	return &WatcherService{
		monitorRepo:         monitorRepo,
		eventRepo:           eventRepo,
		contentRepo:         contentRepo,
		notifier:            notifier,
		execLock:            execLock,
		fetchers:            fetchers,
		comparator:          comparator,
		txManager:           txManager,
		fetchTimeout:        fetchTimeout,
		maxFetchRetries:     maxFetchRetries,
		shrinkageGuard:      shrinkageGuard,
		alertInactivityDays: alertInactivityDays,
		logger:              logger,
	}
}

func (s *WatcherService) RegisterMonitor(
	ctx context.Context,
	orgCode, name string,
	contentType models.ContentType,
	intervalMinutes int,
	sites []string,
	maxResults int,
	keyword string,
) (*models.Monitor, error) {
	if !contentType.Valid() {
		return nil, &customerrors.ErrUnknownContentType{Type: string(contentType)}
	}

	monitor := models.NewMonitor(orgCode, name, contentType, intervalMinutes, sites)
	monitor.MaxResults = maxResults
	monitor.Keyword = keyword

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return s.monitorRepo.Save(ctx, monitor)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Монитор зарегистрирован",
		"monitorID", monitor.ID,
		"guid", monitor.GUID(),
	)

	return monitor, nil
}

func (s *WatcherService) GetMonitor(ctx context.Context, id int64) (*models.Monitor, error) {
	return s.monitorRepo.FindByID(ctx, id)
}

func (s *WatcherService) GetMonitors(ctx context.Context) ([]*models.Monitor, error) {
	return s.monitorRepo.GetAll(ctx)
}

func (s *WatcherService) FindDue(ctx context.Context, batchSize int, afterID int64) ([]*models.Monitor, error) {
	return s.monitorRepo.FindDue(ctx, batchSize, afterID)
}

func (s *WatcherService) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		monitor, err := s.monitorRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if enabled {
			monitor.Enable()
		} else {
			monitor.Disable()
		}

		return s.monitorRepo.Update(ctx, monitor)
	})
}

func (s *WatcherService) RestartMonitor(ctx context.Context, id int64) error {
	return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		monitor, err := s.monitorRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		monitor.Restart()

		s.logger.Info("Монитор перезапущен",
			"monitorID", monitor.ID,
			"state", monitor.State,
		)

		return s.monitorRepo.Update(ctx, monitor)
	})
}

// CheckMonitor выполняет один цикл fetch+compare+transition. Блокировка
// по идентификатору монитора удерживается на весь цикл: два воркера не
// должны одновременно проверять один монитор.
func (s *WatcherService) CheckMonitor(ctx context.Context, monitorID int64) error {
	release, acquired, err := s.execLock.Acquire(ctx, monitorID)
	if err != nil {
		return err
	}

	if !acquired {
		return nil
	}

	defer release()

	started := time.Now()

	var monitor *models.Monitor

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		m, err := s.monitorRepo.FindByID(ctx, monitorID)
		if err != nil {
			return err
		}

		if err := m.BeginExecution(); err != nil {
			return err
		}

		if err := s.monitorRepo.Update(ctx, m); err != nil {
			return err
		}

		monitor = m

		return nil
	})

	if err != nil {
		var disabled *customerrors.ErrMonitorDisabled

		var executing *customerrors.ErrMonitorExecuting

		if errors.As(err, &disabled) || errors.As(err, &executing) {
			s.logger.Info("Проверка монитора пропущена",
				"monitorID", monitorID,
				"reason", err.Error(),
			)

			return nil
		}

		return err
	}

	outcome := s.runCheck(ctx, monitor, started)

	metrics.ObserveCheck(string(monitor.ContentType), outcome, started)

	return nil
}

func (s *WatcherService) runCheck(ctx context.Context, monitor *models.Monitor, started time.Time) string {
	fetcher, err := s.fetchers.CreateFetcher(monitor.ContentType)
	if err != nil {
		return s.failHard(ctx, monitor, err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	result, err := fetcher.Fetch(fetchCtx, monitor)
	if err != nil {
		var notConfigured *customerrors.ErrSourceNotConfigured

		if errors.As(err, &notConfigured) {
			return s.failHard(ctx, monitor, err)
		}

		return s.retryOrFail(ctx, monitor, err)
	}

	latest := models.NewSnapshot(monitor.ContentType, result.Teasers)
	duration := time.Since(started)

	if monitor.Snapshot.IsEmpty() && monitor.LastSucceeded.IsZero() {
		// первый успешный обход задаёт базовый снапшот, событие не создаётся
		monitor.CompleteExecution(latest, duration, result.PageTitle)
		s.persist(ctx, monitor)

		return "baseline"
	}

	// для видеоканалов большие легитимные колебания списка — норма
	guard := s.shrinkageGuard && monitor.ContentType != models.Video

	cmp, err := s.comparator.Compare(ctx, monitor.Snapshot, latest, s.lookupFor(monitor), guard)
	if err != nil {
		return s.retryOrFail(ctx, monitor, err)
	}

	switch cmp.Kind {
	case compare.Anomaly:
		metrics.ComparisonAnomaliesTotal.Inc()

		return s.anomaly(ctx, monitor, cmp)
	case compare.Changed:
		return s.changed(ctx, monitor, cmp, duration, result.PageTitle)
	case compare.Unchanged:
		return s.unchanged(ctx, monitor, cmp, duration, result.PageTitle)
	default:
		return s.unchanged(ctx, monitor, cmp, duration, result.PageTitle)
	}
}

func (s *WatcherService) unchanged(
	ctx context.Context,
	monitor *models.Monitor,
	cmp *compare.Result,
	duration time.Duration,
	pageTitle string,
) string {
	monitor.CompleteExecution(cmp.Latest, duration, pageTitle)

	if s.alertInactivityDays > 0 {
		newest := newestDate(cmp.Latest)
		threshold := time.Duration(s.alertInactivityDays) * 24 * time.Hour

		if !newest.IsZero() && time.Since(newest) > threshold {
			event := models.NewAlertEvent(monitor, models.AlertInactivity, newest)

			if monitor.MarkAlert(event.ID) {
				err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
					if err := s.eventRepo.SaveAlert(ctx, event); err != nil {
						return err
					}

					return s.monitorRepo.Update(ctx, monitor)
				})
				if err != nil {
					s.logger.Error("Ошибка при создании события тревоги",
						"monitorID", monitor.ID,
						"error", err,
					)

					return "error"
				}

				s.notifyEvent(ctx, models.KindAlert, &event.EventBase, string(event.Status), string(event.Reason))

				return "alert"
			}
		}
	}

	s.persist(ctx, monitor)

	return "unchanged"
}

func (s *WatcherService) changed(
	ctx context.Context,
	monitor *models.Monitor,
	cmp *compare.Result,
	duration time.Duration,
	pageTitle string,
) string {
	event := models.NewChangeEvent(monitor, monitor.Snapshot, cmp.Latest, cmp.DiffPercent, duration)

	if !monitor.MarkChanged(event.ID) {
		s.logger.Info("Монитор уже в CHANGED, дубликат события не создаётся",
			"monitorID", monitor.ID,
		)

		s.persist(ctx, monitor)

		return "changed"
	}

	// выборка прошла успешно, но базовый снапшот не замещается:
	// он станет новым базовым только после подтверждения события
	monitor.LastSucceeded = time.Now()
	monitor.LastDuration = duration
	monitor.PageTitle = pageTitle
	monitor.RetryCount = 0
	monitor.ErrorMessage = ""

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.eventRepo.SaveChange(ctx, event); err != nil {
			return err
		}

		return s.monitorRepo.Update(ctx, monitor)
	})
	if err != nil {
		s.logger.Error("Ошибка при создании события изменения",
			"monitorID", monitor.ID,
			"error", err,
		)

		return "error"
	}

	s.logger.Info("Обнаружено изменение контента",
		"monitorID", monitor.ID,
		"guid", monitor.GUID(),
		"diffPercent", cmp.DiffPercent,
	)

	s.notifyEvent(ctx, models.KindChange, &event.EventBase, string(event.Status), "")

	return "changed"
}

func (s *WatcherService) anomaly(ctx context.Context, monitor *models.Monitor, cmp *compare.Result) string {
	message := fmt.Sprintf("аномальное сокращение списка тизеров на %.1f%%", cmp.DecreasePercent)

	exceeded := monitor.MarkRetry(message, s.maxFetchRetries)
	if !exceeded {
		s.persist(ctx, monitor)

		return "anomaly"
	}

	// подряд аномальные обходы — источник ненадёжен, нужна ручная проверка
	event := models.NewReviewEvent(monitor, models.ReviewUnreliable, time.Now())
	monitor.MarkReview(event.ID)

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.eventRepo.SaveReview(ctx, event); err != nil {
			return err
		}

		return s.monitorRepo.Update(ctx, monitor)
	})
	if err != nil {
		s.logger.Error("Ошибка при создании события проверки",
			"monitorID", monitor.ID,
			"error", err,
		)

		return "error"
	}

	s.notifyEvent(ctx, models.KindReview, &event.EventBase, string(event.Status), string(event.Reason))

	return "review"
}

func (s *WatcherService) retryOrFail(ctx context.Context, monitor *models.Monitor, cause error) string {
	exceeded := monitor.MarkRetry(cause.Error(), s.maxFetchRetries)
	if !exceeded {
		s.logger.Warn("Временная ошибка проверки, монитор уйдёт на повтор",
			"monitorID", monitor.ID,
			"retryCount", monitor.RetryCount,
			"error", cause,
		)

		s.persist(ctx, monitor)

		return "retry"
	}

	return s.failure(ctx, monitor, failureReason(cause))
}

func (s *WatcherService) failHard(ctx context.Context, monitor *models.Monitor, cause error) string {
	monitor.MarkError(cause.Error())

	return s.failure(ctx, monitor, models.FailureDefective)
}

func (s *WatcherService) failure(ctx context.Context, monitor *models.Monitor, reason models.FailureReason) string {
	event := models.NewFailureEvent(monitor, reason, uuid.NewString())

	if !monitor.RecordFailureEvent(event.ID) {
		s.persist(ctx, monitor)

		return "failure"
	}

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.eventRepo.SaveFailure(ctx, event); err != nil {
			return err
		}

		return s.monitorRepo.Update(ctx, monitor)
	})
	if err != nil {
		s.logger.Error("Ошибка при создании события сбоя",
			"monitorID", monitor.ID,
			"error", err,
		)

		return "error"
	}

	s.logger.Error("Монитор переведён в ERROR",
		"monitorID", monitor.ID,
		"guid", monitor.GUID(),
		"reason", event.Reason,
		"message", monitor.ErrorMessage,
	)

	s.notifyEvent(ctx, models.KindFailure, &event.EventBase, string(event.Status), string(event.Reason))

	return "failure"
}

// RaiseAlert создаёт событие тревоги вручную, например при приостановке
// источника оператором.
func (s *WatcherService) RaiseAlert(
	ctx context.Context,
	monitorID int64,
	reason models.AlertReason,
	effectiveFrom time.Time,
) (*models.AlertEvent, error) {
	var event *models.AlertEvent

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		monitor, err := s.monitorRepo.FindByID(ctx, monitorID)
		if err != nil {
			return err
		}

		event = models.NewAlertEvent(monitor, reason, effectiveFrom)

		if !monitor.MarkAlert(event.ID) {
			event = nil

			s.logger.Info("Монитор уже в ALERT, дубликат события не создаётся",
				"monitorID", monitorID,
			)

			return nil
		}

		if err := s.eventRepo.SaveAlert(ctx, event); err != nil {
			return err
		}

		return s.monitorRepo.Update(ctx, monitor)
	})
	if err != nil {
		return nil, err
	}

	if event != nil {
		s.notifyEvent(ctx, models.KindAlert, &event.EventBase, string(event.Status), string(event.Reason))
	}

	return event, nil
}

// ResolveEvent закрывает событие и, если его идентификатор совпадает с
// открытым событием монитора, снимает состояние и переводит монитор в
// RESUMING. Выполняется в serializable транзакции: решение не должно
// обгонять создание нового события на том же мониторе.
func (s *WatcherService) ResolveEvent(
	ctx context.Context,
	monitorID int64,
	kind models.EventKind,
	eventID, status, user string,
) error {
	if err := validateTerminalStatus(kind, status); err != nil {
		return err
	}

	return s.txManager.WithSerializableTransaction(ctx, func(ctx context.Context) error {
		monitor, err := s.monitorRepo.FindByID(ctx, monitorID)
		if err != nil {
			return err
		}

		if err := s.eventRepo.UpdateStatus(ctx, kind, eventID, status, user); err != nil {
			return err
		}

		if !s.clearOpenEvent(monitor, kind, eventID) {
			// событие закрыто, но монитор ссылается уже на другое:
			// устаревшее разрешение не сбрасывает состояние
			s.logger.Warn("Событие не является открытым событием монитора",
				"monitorID", monitorID,
				"eventID", eventID,
				"kind", kind,
			)

			return nil
		}

		if kind == models.KindChange && status == string(models.ChangeConfirmed) {
			event, err := s.eventRepo.FindChangeByID(ctx, eventID)
			if err != nil {
				return err
			}

			// подтверждённое изменение становится новым базовым снапшотом
			if event.After != nil {
				monitor.Snapshot = event.After
			}
		}

		s.logger.Info("Событие разрешено",
			"monitorID", monitorID,
			"eventID", eventID,
			"kind", kind,
			"status", status,
			"user", user,
		)

		return s.monitorRepo.Update(ctx, monitor)
	})
}

func (s *WatcherService) clearOpenEvent(monitor *models.Monitor, kind models.EventKind, eventID string) bool {
	switch kind {
	case models.KindChange:
		return monitor.ClearChange(eventID)
	case models.KindAlert:
		return monitor.ClearAlert(eventID)
	case models.KindReview:
		return monitor.ClearReview(eventID)
	case models.KindFailure:
		return monitor.ClearFailure(eventID)
	default:
		return false
	}
}

func (s *WatcherService) UpdateActiveMonitorsMetrics(ctx context.Context) {
	monitors, err := s.monitorRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error("Ошибка при обновлении метрик мониторов",
			"error", err,
		)

		return
	}

	counts := make(map[[2]string]int)

	for _, monitor := range monitors {
		if !monitor.Enabled {
			continue
		}

		counts[[2]string{string(monitor.ContentType), string(monitor.State)}]++
	}

	metrics.ActiveMonitors.Reset()

	for key, count := range counts {
		metrics.ActiveMonitors.WithLabelValues(key[0], key[1]).Set(float64(count))
	}
}

func (s *WatcherService) persist(ctx context.Context, monitor *models.Monitor) {
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return s.monitorRepo.Update(ctx, monitor)
	})
	if err != nil {
		s.logger.Error("Ошибка при сохранении монитора",
			"monitorID", monitor.ID,
			"error", err,
		)
	}
}

func (s *WatcherService) notifyEvent(
	ctx context.Context,
	kind models.EventKind,
	base *models.EventBase,
	status, reason string,
) {
	metrics.EventsCreatedTotal.WithLabelValues(string(kind)).Inc()

	notification := &models.EventNotification{
		Kind:      kind,
		EventID:   base.ID,
		MonitorID: base.MonitorID,
		OrgCode:   base.OrgCode,
		GUID:      base.GUID,
		Status:    status,
		Reason:    reason,
		CreatedAt: base.CreatedAt,
	}

	if err := s.notifier.Notify(ctx, notification); err != nil {
		s.logger.Error("Ошибка при отправке уведомления о событии",
			"eventID", base.ID,
			"error", err,
		)
	}
}

func (s *WatcherService) lookupFor(monitor *models.Monitor) compare.ContentLookup {
	return &orgContentLookup{
		repo:    s.contentRepo,
		orgCode: monitor.OrgCode,
	}
}

// orgContentLookup сужает справочник контента до организации монитора и
// переводит "не найдено" в nil, nil, как того ожидает компаратор.
type orgContentLookup struct {
	repo    ContentRepository
	orgCode string
}

//nolint:nilnil // отсутствие контента — не ошибка для компаратора
func (l *orgContentLookup) FindByTitle(ctx context.Context, title string) (*models.PublishedContent, error) {
	content, err := l.repo.FindByTitle(ctx, l.orgCode, title)
	if err != nil {
		var notFound *customerrors.ErrContentNotFound

		if errors.As(err, &notFound) {
			return nil, nil
		}

		return nil, err
	}

	return content, nil
}

//nolint:nilnil // отсутствие контента — не ошибка для компаратора
func (l *orgContentLookup) FindByKey(ctx context.Context, key string) (*models.PublishedContent, error) {
	content, err := l.repo.FindByKey(ctx, l.orgCode, key)
	if err != nil {
		var notFound *customerrors.ErrContentNotFound

		if errors.As(err, &notFound) {
			return nil, nil
		}

		return nil, err
	}

	return content, nil
}

func validateTerminalStatus(kind models.EventKind, status string) error {
	var terminal bool

	switch kind {
	case models.KindChange:
		terminal = models.ChangeStatus(status).Terminal()
	case models.KindAlert:
		terminal = models.AlertStatus(status).Terminal()
	case models.KindReview:
		terminal = models.ReviewStatus(status).Terminal()
	case models.KindFailure:
		terminal = models.FailureStatus(status).Terminal()
	default:
		return &customerrors.ErrInvalidValue{FieldName: "kind", Value: string(kind)}
	}

	if !terminal {
		return &customerrors.ErrInvalidValue{FieldName: "status", Value: status}
	}

	return nil
}

func failureReason(err error) models.FailureReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.FailureHanging
	}

	var httpErr *customerrors.HTTPError

	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case 401, 403:
			return models.FailureAccessDenied
		}
	}

	return models.FailureIntermittent
}

func newestDate(snapshot *models.Snapshot) time.Time {
	var newest time.Time

	for _, item := range snapshot.Items() {
		if item.Date.After(newest) {
			newest = item.Date
		}
	}

	return newest
}
