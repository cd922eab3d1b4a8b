package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

type ContentRepository struct {
	mock.Mock
}

func NewContentRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *ContentRepository {
	m := &ContentRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *ContentRepository) FindByTitle(ctx context.Context, orgCode, title string) (*models.PublishedContent, error) {
	args := m.Called(ctx, orgCode, title)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.PublishedContent), args.Error(1)
}

func (m *ContentRepository) FindByKey(ctx context.Context, orgCode, key string) (*models.PublishedContent, error) {
	args := m.Called(ctx, orgCode, key)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.PublishedContent), args.Error(1)
}
