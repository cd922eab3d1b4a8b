package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

type MonitorChecker struct {
	mock.Mock
}

func NewMonitorChecker(t interface {
	mock.TestingT
	Cleanup(func())
}) *MonitorChecker {
	m := &MonitorChecker{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MonitorChecker) CheckMonitor(ctx context.Context, monitorID int64) error {
	args := m.Called(ctx, monitorID)
	return args.Error(0)
}

func (m *MonitorChecker) FindDue(ctx context.Context, batchSize int, afterID int64) ([]*models.Monitor, error) {
	args := m.Called(ctx, batchSize, afterID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Monitor), args.Error(1)
}
