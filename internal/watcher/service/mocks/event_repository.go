package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

type EventRepository struct {
	mock.Mock
}

func NewEventRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *EventRepository {
	m := &EventRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *EventRepository) SaveChange(ctx context.Context, event *models.ChangeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventRepository) SaveAlert(ctx context.Context, event *models.AlertEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventRepository) SaveReview(ctx context.Context, event *models.ReviewEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventRepository) SaveFailure(ctx context.Context, event *models.FailureEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventRepository) UpdateStatus(ctx context.Context, kind models.EventKind, id, status, user string) error {
	args := m.Called(ctx, kind, id, status, user)
	return args.Error(0)
}

func (m *EventRepository) FindChangeByID(ctx context.Context, id string) (*models.ChangeEvent, error) {
	args := m.Called(ctx, id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ChangeEvent), args.Error(1)
}
