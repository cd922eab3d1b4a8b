package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
	"github.com/central-university-dev/go-content-watch/internal/watcher/fetch"
)

type Fetcher struct {
	mock.Mock
}

func NewFetcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *Fetcher {
	m := &Fetcher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *Fetcher) Fetch(ctx context.Context, monitor *models.Monitor) (*fetch.Result, error) {
	args := m.Called(ctx, monitor)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*fetch.Result), args.Error(1)
}

type FetcherFactory struct {
	mock.Mock
}

func NewFetcherFactory(t interface {
	mock.TestingT
	Cleanup(func())
}) *FetcherFactory {
	m := &FetcherFactory{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *FetcherFactory) CreateFetcher(contentType models.ContentType) (fetch.Fetcher, error) {
	args := m.Called(contentType)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(fetch.Fetcher), args.Error(1)
}
