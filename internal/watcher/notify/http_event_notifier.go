package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/central-university-dev/go-content-watch/internal/common/httputil"
	"github.com/central-university-dev/go-content-watch/internal/config"
	customerrors "github.com/central-university-dev/go-content-watch/internal/domain/errors"
	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

type HTTPEventNotifier struct {
	client *resty.Client
	logger *slog.Logger
}

func NewHTTPEventNotifier(baseURL string, cfg *config.Config, logger *slog.Logger) *HTTPEventNotifier {
	if baseURL == "" {
		baseURL = "http://content_watch_notifier:8080"
	}

	client := httputil.CreateResilientHTTPClient(cfg, logger, "notifier_service").
		SetBaseURL(baseURL)

	return &HTTPEventNotifier{
		client: client,
		logger: logger,
	}
}

func (n *HTTPEventNotifier) Notify(ctx context.Context, notification *models.EventNotification) error {
	n.logger.Info("Отправка уведомления о событии",
		"eventID", notification.EventID,
		"monitorID", notification.MonitorID,
		"kind", notification.Kind,
	)

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(notification).
		Post("/api/v1/events")
	if err != nil {
		n.logger.Error("Ошибка при отправке уведомления о событии",
			"error", err,
		)

		return fmt.Errorf("ошибка при отправке уведомления о событии: %w", err)
	}

	if resp.IsError() {
		n.logger.Error("Сервис уведомлений вернул ошибку",
			"status", resp.StatusCode(),
		)

		return &customerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	n.logger.Info("Уведомление о событии успешно отправлено")

	return nil
}
