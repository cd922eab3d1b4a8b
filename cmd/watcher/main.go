package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"github.com/central-university-dev/go-content-watch/internal/common/metrics"
	"github.com/central-university-dev/go-content-watch/internal/common/middleware"
	"github.com/central-university-dev/go-content-watch/internal/config"
	"github.com/central-university-dev/go-content-watch/internal/database"
	"github.com/central-university-dev/go-content-watch/internal/watcher/compare"
	"github.com/central-university-dev/go-content-watch/internal/watcher/fetch"
	"github.com/central-university-dev/go-content-watch/internal/watcher/handler"
	"github.com/central-university-dev/go-content-watch/internal/watcher/lock"
	"github.com/central-university-dev/go-content-watch/internal/watcher/notify"
	"github.com/central-university-dev/go-content-watch/internal/watcher/repository"
	"github.com/central-university-dev/go-content-watch/internal/watcher/scheduler"
	"github.com/central-university-dev/go-content-watch/internal/watcher/service"
	"github.com/central-university-dev/go-content-watch/pkg"
	"github.com/central-university-dev/go-content-watch/pkg/txs"
)

func gracefulShutdown(
	ctx context.Context,
	server *http.Server,
	metricsServer *metrics.MetricsServer,
	checkScheduler *scheduler.ParallelScheduler,
	stopCh <-chan struct{},
	appLogger *slog.Logger,
) {
	<-stopCh
	appLogger.Info("Получен сигнал завершения")

	checkScheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Ошибка при остановке HTTP сервера",
			"error", err,
		)
	}

	if err := metricsServer.Stop(shutdownCtx); err != nil {
		appLogger.Error("Ошибка при остановке сервера метрик",
			"error", err,
		)
	}

	appLogger.Info("Сервер успешно остановлен")
}

func startHTTPServer(_ context.Context, server *http.Server, port int, stopCh chan<- struct{}, appLogger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLogger.Info("Получен системный сигнал",
			"signal", sig.String(),
		)
		close(stopCh)
	}()

	go func() {
		appLogger.Info("Запуск HTTP сервера наблюдателя",
			"port", port,
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Ошибка при запуске HTTP сервера",
				"error", err,
			)
			close(stopCh)
		}
	}()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска сервиса: %v\n", err)
		os.Exit(1)
	}
}

//nolint:funlen // Длина функции обусловлена необходимостью последовательной инициализации всех компонентов.
func run() error {
	appLogger := pkg.NewLogger(os.Stdout)

	cfg := config.LoadConfig()

	ctx := context.Background()

	db, err := database.NewPostgresDB(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Ошибка при подключении к базе данных",
			"error", err,
		)

		return fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	defer db.Close()

	txManager := txs.NewTxManager(db.Pool, appLogger)

	repoFactory := repository.NewFactory(db, cfg, appLogger)

	monitorRepo, err := repoFactory.CreateMonitorRepository()
	if err != nil {
		appLogger.Error("Ошибка при создании репозитория мониторов",
			"error", err,
		)

		return err
	}

	eventRepo, err := repoFactory.CreateEventRepository()
	if err != nil {
		appLogger.Error("Ошибка при создании репозитория событий",
			"error", err,
		)

		return err
	}

	contentRepo, err := repoFactory.CreateContentRepository()
	if err != nil {
		appLogger.Error("Ошибка при создании репозитория опубликованного контента",
			"error", err,
		)

		return err
	}

	fetcherFactory := fetch.NewFactory(
		fetch.NewPageFetcher(cfg.CrawlServiceBaseURL, cfg, appLogger),
		fetch.NewChannelFetcher(cfg.VideoAPIBaseURL, cfg.VideoAPIToken, cfg, appLogger),
	)

	comparator := compare.NewComparator(cfg.ShrinkageThreshold, appLogger)

	notifierFactory := notify.NewNotifierFactory(cfg, appLogger)

	eventNotifier, err := notifierFactory.CreateNotifier()
	if err != nil {
		appLogger.Error("Ошибка при создании нотификатора событий",
			"error", err,
		)

		return err
	}

	// резервный транспорт имеет смысл только если отличается от основного
	if cfg.FallbackEnabled && !strings.EqualFold(cfg.FallbackTransport, cfg.MessageTransport) {
		fallback, err := notifierFactory.CreateNotifierFor(cfg.FallbackTransport)
		if err != nil {
			appLogger.Error("Ошибка при создании резервного нотификатора",
				"transport", cfg.FallbackTransport,
				"error", err,
			)

			return err
		}

		eventNotifier = notify.NewFallbackEventNotifier(eventNotifier, fallback, appLogger)
	}

	var execLock service.ExecutionLock

	redisLock, err := lock.NewRedisExecutionLock(
		ctx,
		cfg.RedisURL,
		cfg.RedisPassword,
		cfg.RedisDB,
		cfg.RedisLockTTL,
		appLogger,
	)
	if err != nil {
		appLogger.Error("Ошибка при подключении к Redis для блокировок",
			"error", err,
		)

		appLogger.Warn("Продолжаем с блокировками в памяти процесса")

		execLock = lock.NewMemoryExecutionLock()
	} else {
		execLock = redisLock

		defer func() {
			if err := redisLock.Close(); err != nil {
				appLogger.Error("Ошибка при закрытии соединения с Redis",
					"error", err,
				)
			}
		}()
	}

	watcherService := service.NewWatcherService(
		monitorRepo,
		eventRepo,
		contentRepo,
		eventNotifier,
		execLock,
		fetcherFactory,
		comparator,
		txManager,
		cfg.FetchTimeout,
		cfg.MaxFetchRetries,
		cfg.ShrinkageGuard,
		cfg.AlertInactivityDays,
		appLogger,
	)

	watcherHandler := handler.NewWatcherHandler(watcherService, appLogger)

	mux := http.NewServeMux()
	watcherHandler.RegisterRoutes(mux)

	rateLimiter := middleware.NewRateLimiterMiddleware(
		ctx,
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		appLogger,
	)

	metricsMiddleware := middleware.NewMetricsMiddleware()

	serverWithMiddleware := rateLimiter.Middleware(metricsMiddleware.Middleware(mux))

	metricsServer := metrics.NewMetricsServer(cfg.MetricsPort, appLogger)

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка при запуске сервера метрик",
				"error", err,
			)
		}
	}()

	checkScheduler := scheduler.NewParallelScheduler(
		watcherService,
		cfg.SchedulerCheckInterval,
		cfg.DatabaseBatchSize,
		cfg.SchedulerWorkers,
		appLogger,
	)

	checkScheduler.Start()

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           serverWithMiddleware,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCh := make(chan struct{})

	startHTTPServer(ctx, httpServer, cfg.ServerPort, stopCh, appLogger)

	gracefulShutdown(ctx, httpServer, metricsServer, checkScheduler, stopCh, appLogger)

	return nil
}
