package notify

import (
	"context"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

type FallbackEventNotifier struct {
	primary   EventNotifier
	secondary EventNotifier
	logger    *slog.Logger
}

func NewFallbackEventNotifier(primary, secondary EventNotifier, logger *slog.Logger) *FallbackEventNotifier {
	return &FallbackEventNotifier{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

func (n *FallbackEventNotifier) Notify(ctx context.Context, notification *models.EventNotification) error {
	err := n.primary.Notify(ctx, notification)
	if err == nil {
		return nil
	}

	n.logger.Warn("Основной транспорт недоступен, переключаемся на резервный",
		"primaryError", err,
		"eventID", notification.EventID,
	)

	fallbackErr := n.secondary.Notify(ctx, notification)
	if fallbackErr != nil {
		return multierr.Append(err, fallbackErr)
	}

	n.logger.Info("Уведомление успешно отправлено через резервный транспорт",
		"eventID", notification.EventID,
	)

	return nil
}
