package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

// MonitorChecker выполняет один цикл проверки монитора и отдаёт
// очередную порцию мониторов, готовых к проверке.
type MonitorChecker interface {
	CheckMonitor(ctx context.Context, monitorID int64) error

	FindDue(ctx context.Context, batchSize int, afterID int64) ([]*models.Monitor, error)
}

type ParallelScheduler struct {
	scheduler *gocron.Scheduler
	checker   MonitorChecker
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	workers   int
}

func NewParallelScheduler(
	checker MonitorChecker,
	interval time.Duration,
	batchSize int,
	workers int,
	logger *slog.Logger,
) *ParallelScheduler {
	scheduler := gocron.NewScheduler(time.UTC)

	if workers <= 0 {
		workers = 4
	}

	if batchSize <= 0 {
		batchSize = 100
	}

	return &ParallelScheduler{
		scheduler: scheduler,
		checker:   checker,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
		workers:   workers,
	}
}

func (s *ParallelScheduler) Start() {
	s.logger.Info("Запуск параллельного планировщика",
		"interval", s.interval.String(),
		"workers", s.workers,
		"batchSize", s.batchSize,
	)

	_, err := s.scheduler.Every(s.interval).Do(func() {
		s.logger.Info("Запуск параллельной проверки мониторов")

		ctx := context.Background()
		s.ProcessBatches(ctx)
	})

	if err != nil {
		s.logger.Error("Ошибка при настройке планировщика",
			"error", err,
		)

		return
	}

	s.scheduler.StartAsync()
}

func (s *ParallelScheduler) Stop() {
	s.logger.Info("Остановка параллельного планировщика")
	s.scheduler.Stop()
}

func (s *ParallelScheduler) ProcessBatches(ctx context.Context) {
	s.logger.Info("Начало проверки мониторов")

	if watcher, ok := s.checker.(interface{ UpdateActiveMonitorsMetrics(ctx context.Context) }); ok {
		watcher.UpdateActiveMonitorsMetrics(ctx)
	}

	// keyset-пагинация по id: проверенный монитор покидает выборку FindDue,
	// поэтому OFFSET сдвигал бы ещё не проверенные строки под началом
	// следующей страницы.
	var afterID int64

	batchNum := 1
	processedCount := 0

	for {
		s.logger.Debug("Запрос очередной порции мониторов", "batchSize", s.batchSize, "afterID", afterID)

		monitors, err := s.checker.FindDue(ctx, s.batchSize, afterID)
		if err != nil {
			s.logger.Error("Ошибка при получении порции мониторов",
				"error", err,
				"afterID", afterID,
			)

			break
		}

		if len(monitors) == 0 {
			s.logger.Info("Больше нет мониторов для проверки")
			break
		}

		batchSize := len(monitors)
		s.logger.Info("Обработка батча",
			"batch", batchNum,
			"size", batchSize,
			"afterID", afterID,
		)

		s.processOneBatch(ctx, monitors, batchNum)

		processedCount += batchSize
		afterID = monitors[batchSize-1].ID
		batchNum++
	}

	s.logger.Info("Проверка мониторов завершена",
		"processed", processedCount,
	)
}

func (s *ParallelScheduler) processOneBatch(ctx context.Context, batch []*models.Monitor, batchNum int) {
	monitorCh := make(chan *models.Monitor)
	wg := sync.WaitGroup{}

	for i := 0; i < s.workers; i++ {
		workerID := i + 1

		wg.Add(1)

		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, monitorCh, workerID, batchNum)
		}(workerID)
	}

	go func() {
		for _, monitor := range batch {
			monitorCh <- monitor
		}

		close(monitorCh)
	}()

	wg.Wait()
}

func (s *ParallelScheduler) worker(ctx context.Context, monitorCh <-chan *models.Monitor, workerID, batchNum int) {
	for monitor := range monitorCh {
		s.logger.Debug("Воркер проверяет монитор",
			"worker", workerID,
			"batch", batchNum,
			"monitor", monitor.ID,
			"guid", monitor.GUID(),
		)

		if err := s.checker.CheckMonitor(ctx, monitor.ID); err != nil {
			s.logger.Error("Ошибка при проверке монитора",
				"worker", workerID,
				"batch", batchNum,
				"monitor", monitor.ID,
				"guid", monitor.GUID(),
				"error", err,
			)
		}
	}

	s.logger.Debug("Воркер завершил работу",
		"worker", workerID,
		"batch", batchNum,
	)
}
