package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

type EventNotifier struct {
	mock.Mock
}

func NewEventNotifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *EventNotifier {
	m := &EventNotifier{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *EventNotifier) Notify(ctx context.Context, notification *models.EventNotification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}
