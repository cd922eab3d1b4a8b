package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
	"github.com/central-university-dev/go-content-watch/internal/watcher/compare"
)

type SnapshotComparator struct {
	mock.Mock
}

func NewSnapshotComparator(t interface {
	mock.TestingT
	Cleanup(func())
}) *SnapshotComparator {
	m := &SnapshotComparator{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *SnapshotComparator) Compare(
	ctx context.Context,
	current, latest *models.Snapshot,
	lookup compare.ContentLookup,
	guardShrinkage bool,
) (*compare.Result, error) {
	args := m.Called(ctx, current, latest, lookup, guardShrinkage)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*compare.Result), args.Error(1)
}
