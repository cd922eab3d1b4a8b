package lock

import (
	"context"
	"sync"
)

// MemoryExecutionLock используется при запуске без Redis (один экземпляр сервиса).
type MemoryExecutionLock struct {
	mu     sync.Mutex
	locked map[int64]bool
}

func NewMemoryExecutionLock() *MemoryExecutionLock {
	return &MemoryExecutionLock{
		locked: make(map[int64]bool),
	}
}

func (l *MemoryExecutionLock) Acquire(_ context.Context, monitorID int64) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked[monitorID] {
		return nil, false, nil
	}

	l.locked[monitorID] = true

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.locked, monitorID)
	}

	return release, true, nil
}
