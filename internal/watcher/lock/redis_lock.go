package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ExecutionLock ограничивает проверку монитора одним воркером.
type ExecutionLock interface {
	Acquire(ctx context.Context, monitorID int64) (release func(), acquired bool, err error)
}

type RedisExecutionLock struct {
	client     *redis.Client
	ttl        time.Duration
	logger     *slog.Logger
	keyPattern string
}

func NewRedisExecutionLock(
	ctx context.Context,
	redisURL, password string,
	db int,
	ttl time.Duration,
	logger *slog.Logger,
) (*RedisExecutionLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis для блокировок мониторов успешно установлено")

	return &RedisExecutionLock{
		client:     client,
		ttl:        ttl,
		logger:     logger,
		keyPattern: "monitor:lock:%d",
	}, nil
}

func (l *RedisExecutionLock) Acquire(ctx context.Context, monitorID int64) (func(), bool, error) {
	key := fmt.Sprintf(l.keyPattern, monitorID)
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("ошибка при установке блокировки в Redis: %w", err)
	}

	if !acquired {
		l.logger.Debug("Монитор уже проверяется другим воркером",
			"monitorID", monitorID,
		)

		return nil, false, nil
	}

	release := func() {
		// снимаем только свою блокировку, чужую по истёкшему TTL не трогаем
		const script = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

		if err := l.client.Eval(context.Background(), script, []string{key}, token).Err(); err != nil {
			l.logger.Error("Ошибка при снятии блокировки монитора",
				"monitorID", monitorID,
				"error", err,
			)
		}
	}

	return release, true, nil
}

func (l *RedisExecutionLock) Close() error {
	return l.client.Close()
}
