package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

type MonitorRepository struct {
	mock.Mock
}

func NewMonitorRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MonitorRepository {
	m := &MonitorRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MonitorRepository) Save(ctx context.Context, monitor *models.Monitor) error {
	args := m.Called(ctx, monitor)
	return args.Error(0)
}

func (m *MonitorRepository) FindByID(ctx context.Context, id int64) (*models.Monitor, error) {
	args := m.Called(ctx, id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Monitor), args.Error(1)
}

func (m *MonitorRepository) FindDue(ctx context.Context, batchSize int, afterID int64) ([]*models.Monitor, error) {
	args := m.Called(ctx, batchSize, afterID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Monitor), args.Error(1)
}

func (m *MonitorRepository) Update(ctx context.Context, monitor *models.Monitor) error {
	args := m.Called(ctx, monitor)
	return args.Error(0)
}

func (m *MonitorRepository) GetAll(ctx context.Context) ([]*models.Monitor, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Monitor), args.Error(1)
}
