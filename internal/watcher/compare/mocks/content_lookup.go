package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

type ContentLookup struct {
	mock.Mock
}

func NewContentLookup(t interface {
	mock.TestingT
	Cleanup(func())
}) *ContentLookup {
	m := &ContentLookup{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *ContentLookup) FindByTitle(ctx context.Context, title string) (*models.PublishedContent, error) {
	args := m.Called(ctx, title)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.PublishedContent), args.Error(1)
}

func (m *ContentLookup) FindByKey(ctx context.Context, key string) (*models.PublishedContent, error) {
	args := m.Called(ctx, key)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.PublishedContent), args.Error(1)
}
