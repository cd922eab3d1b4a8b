package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type ExecutionLock struct {
	mock.Mock
}

func NewExecutionLock(t interface {
	mock.TestingT
	Cleanup(func())
}) *ExecutionLock {
	m := &ExecutionLock{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *ExecutionLock) Acquire(ctx context.Context, monitorID int64) (func(), bool, error) {
	args := m.Called(ctx, monitorID)

	release, _ := args.Get(0).(func())
	if release == nil {
		release = func() {}
	}

	return release, args.Bool(1), args.Error(2)
}
