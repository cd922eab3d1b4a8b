package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/central-university-dev/go-content-watch/internal/config"
	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

type NotifierType string

const (
	HTTPNotifier  NotifierType = "HTTP"
	KafkaNotifier NotifierType = "KAFKA"
)

type NotifierFactory struct {
	config *config.Config
	logger *slog.Logger
}

func NewNotifierFactory(config *config.Config, logger *slog.Logger) *NotifierFactory {
	return &NotifierFactory{
		config: config,
		logger: logger,
	}
}

// CreateNotifier создаёт основной нотификатор по MESSAGE_TRANSPORT.
func (f *NotifierFactory) CreateNotifier() (EventNotifier, error) {
	return f.CreateNotifierFor(f.config.MessageTransport)
}

// CreateNotifierFor создаёт нотификатор для указанного транспорта.
// Имя транспорта сравнивается без учёта регистра.
func (f *NotifierFactory) CreateNotifierFor(transport string) (EventNotifier, error) {
	notifierType := NotifierType(strings.ToUpper(transport))

	f.logger.Info("Создание нотификатора",
		"type", notifierType,
	)

	switch notifierType {
	case HTTPNotifier:
		return NewHTTPEventNotifier(f.config.NotifierBaseURL, f.config, f.logger), nil
	case KafkaNotifier:
		brokers := strings.Split(f.config.KafkaBrokers, ",")
		return NewKafkaEventNotifier(brokers, f.config.TopicMonitorEvents, f.config.TopicDeadLetterQueue, f.logger), nil
	default:
		return nil, fmt.Errorf("неизвестный тип нотификатора: %s", notifierType)
	}
}

type EventNotifier interface {
	Notify(ctx context.Context, notification *models.EventNotification) error
}
