package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

type KafkaEventNotifier struct {
	producer    *kafka.Writer
	dlqProducer *kafka.Writer
	logger      *slog.Logger
	eventTopic  string
	dlqTopic    string
}

type EventMessage struct {
	Kind      string    `json:"kind"`
	EventID   string    `json:"eventId"`
	MonitorID int64     `json:"monitorId"`
	OrgCode   string    `json:"orgCode"`
	GUID      string    `json:"guid"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewKafkaEventNotifier(brokers []string, eventTopic, dlqTopic string, logger *slog.Logger) *KafkaEventNotifier {
	producer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        eventTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	dlqProducer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        dlqTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	return &KafkaEventNotifier{
		producer:    producer,
		dlqProducer: dlqProducer,
		logger:      logger,
		eventTopic:  eventTopic,
		dlqTopic:    dlqTopic,
	}
}

func (n *KafkaEventNotifier) Notify(ctx context.Context, notification *models.EventNotification) error {
	n.logger.Info("Отправка события в Kafka",
		"eventID", notification.EventID,
		"monitorID", notification.MonitorID,
		"kind", notification.Kind,
		"topic", n.eventTopic,
	)

	message := EventMessage{
		Kind:      string(notification.Kind),
		EventID:   notification.EventID,
		MonitorID: notification.MonitorID,
		OrgCode:   notification.OrgCode,
		GUID:      notification.GUID,
		Status:    notification.Status,
		Reason:    notification.Reason,
		CreatedAt: notification.CreatedAt,
	}

	value, err := json.Marshal(message)
	if err != nil {
		n.logger.Error("Ошибка при сериализации сообщения",
			"error", err,
		)

		return fmt.Errorf("ошибка при сериализации сообщения: %w", err)
	}

	err = n.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", notification.MonitorID)),
		Value: value,
		Time:  time.Now(),
	})

	if err != nil {
		n.logger.Error("Ошибка при отправке сообщения в Kafka",
			"error", err,
		)

		if dlqErr := n.sendToDLQ(ctx, value, err.Error()); dlqErr != nil {
			n.logger.Error("Ошибка при отправке сообщения в DLQ",
				"error", dlqErr,
			)
		}

		return fmt.Errorf("ошибка при отправке сообщения в Kafka: %w", err)
	}

	n.logger.Info("Событие успешно отправлено в Kafka")

	return nil
}

func (n *KafkaEventNotifier) sendToDLQ(ctx context.Context, message []byte, errMsg string) error {
	n.logger.Info("Отправка сообщения в DLQ",
		"error", errMsg,
		"topic", n.dlqTopic,
	)

	return n.dlqProducer.WriteMessages(ctx, kafka.Message{
		Key:   []byte("error"),
		Value: message,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(errMsg)},
			{Key: "timestamp", Value: []byte(time.Now().Format(time.RFC3339))},
		},
		Time: time.Now(),
	})
}

func (n *KafkaEventNotifier) Close() error {
	if err := n.producer.Close(); err != nil {
		return fmt.Errorf("ошибка при закрытии продюсера Kafka: %w", err)
	}

	return n.dlqProducer.Close()
}
