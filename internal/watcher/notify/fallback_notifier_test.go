package notify_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
	"github.com/central-university-dev/go-content-watch/internal/watcher/notify"
	"github.com/central-university-dev/go-content-watch/internal/watcher/notify/mocks"
)

func TestFallbackEventNotifier_PrimarySuccess(t *testing.T) {
	// Arrange
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	primaryMock := mocks.NewEventNotifier(t)
	secondaryMock := mocks.NewEventNotifier(t)

	fallbackNotifier := notify.NewFallbackEventNotifier(primaryMock, secondaryMock, logger)

	notification := &models.EventNotification{
		Kind:      models.KindChange,
		EventID:   "7b0d9f2e-1111-4f6a-9f8e-000000000001",
		MonitorID: 1,
	}

	primaryMock.On("Notify", mock.Anything, notification).Return(nil)

	// Act
	err := fallbackNotifier.Notify(context.Background(), notification)

	// Assert
	require.NoError(t, err)
	primaryMock.AssertExpectations(t)
	secondaryMock.AssertNotCalled(t, "Notify")
}

func TestFallbackEventNotifier_PrimaryFailsSecondarySuccess(t *testing.T) {
	// Arrange
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	primaryMock := mocks.NewEventNotifier(t)
	secondaryMock := mocks.NewEventNotifier(t)

	fallbackNotifier := notify.NewFallbackEventNotifier(primaryMock, secondaryMock, logger)

	notification := &models.EventNotification{
		Kind:      models.KindAlert,
		EventID:   "7b0d9f2e-1111-4f6a-9f8e-000000000002",
		MonitorID: 2,
	}

	primaryError := errors.New("primary transport failed")

	primaryMock.On("Notify", mock.Anything, notification).Return(primaryError)
	secondaryMock.On("Notify", mock.Anything, notification).Return(nil)

	// Act
	err := fallbackNotifier.Notify(context.Background(), notification)

	// Assert
	require.NoError(t, err)
	primaryMock.AssertExpectations(t)
	secondaryMock.AssertExpectations(t)
}

func TestFallbackEventNotifier_BothFail(t *testing.T) {
	// Arrange
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	primaryMock := mocks.NewEventNotifier(t)
	secondaryMock := mocks.NewEventNotifier(t)

	fallbackNotifier := notify.NewFallbackEventNotifier(primaryMock, secondaryMock, logger)

	notification := &models.EventNotification{
		Kind:      models.KindFailure,
		EventID:   "7b0d9f2e-1111-4f6a-9f8e-000000000003",
		MonitorID: 3,
	}

	primaryError := errors.New("primary transport failed")
	secondaryError := errors.New("secondary transport failed")

	primaryMock.On("Notify", mock.Anything, notification).Return(primaryError)
	secondaryMock.On("Notify", mock.Anything, notification).Return(secondaryError)

	// Act
	err := fallbackNotifier.Notify(context.Background(), notification)

	// Assert
	require.Error(t, err)
	require.ErrorIs(t, err, primaryError)
	require.ErrorIs(t, err, secondaryError)
	primaryMock.AssertExpectations(t)
	secondaryMock.AssertExpectations(t)
}
