package mocks

import (
	"context"
)

// Transactor — сквозная заглушка менеджера транзакций: просто выполняет
// переданную функцию в том же контексте.
type Transactor struct{}

func NewTransactor() *Transactor {
	return &Transactor{}
}

func (t *Transactor) WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error {
	return txFunc(ctx)
}

func (t *Transactor) WithSerializableTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error {
	return txFunc(ctx)
}
