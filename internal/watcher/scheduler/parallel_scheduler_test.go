package scheduler_test

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
	"github.com/central-university-dev/go-content-watch/internal/watcher/scheduler"
	"github.com/central-university-dev/go-content-watch/internal/watcher/scheduler/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func dueMonitors(ids ...int64) []*models.Monitor {
	monitors := make([]*models.Monitor, 0, len(ids))

	for _, id := range ids {
		m := models.NewMonitor("acme", "news", models.Page, 60, nil)
		m.ID = id
		monitors = append(monitors, m)
	}

	return monitors
}

func TestProcessBatches_DrainsAllBatches(t *testing.T) {
	// Arrange
	checker := mocks.NewMonitorChecker(t)

	checker.On("FindDue", mock.Anything, 2, int64(0)).Return(dueMonitors(1, 2), nil).Once()
	checker.On("FindDue", mock.Anything, 2, int64(2)).Return(dueMonitors(3), nil).Once()
	checker.On("FindDue", mock.Anything, 2, int64(3)).Return([]*models.Monitor{}, nil).Once()

	for _, id := range []int64{1, 2, 3} {
		checker.On("CheckMonitor", mock.Anything, id).Return(nil).Once()
	}

	s := scheduler.NewParallelScheduler(checker, time.Minute, 2, 2, testLogger())

	// Act
	s.ProcessBatches(context.Background())

	// Assert: все ожидания проверяются при очистке теста
}

// dueTable имитирует живую таблицу мониторов: проверенный монитор
// покидает выборку FindDue, как это происходит в базе после обновления
// last_executed.
type dueTable struct {
	mu      sync.Mutex
	due     map[int64]bool
	checked []int64
}

func newDueTable(ids ...int64) *dueTable {
	table := &dueTable{due: make(map[int64]bool, len(ids))}

	for _, id := range ids {
		table.due[id] = true
	}

	return table
}

func (d *dueTable) CheckMonitor(_ context.Context, monitorID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.due, monitorID)
	d.checked = append(d.checked, monitorID)

	return nil
}

func (d *dueTable) FindDue(_ context.Context, batchSize int, afterID int64) ([]*models.Monitor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := make([]int64, 0, len(d.due))

	for id := range d.due {
		if id > afterID {
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if len(ids) > batchSize {
		ids = ids[:batchSize]
	}

	return dueMonitors(ids...), nil
}

func TestProcessBatches_ShrinkingDueSetCheckedFully(t *testing.T) {
	// Arrange
	table := newDueTable(1, 2, 3, 4)

	s := scheduler.NewParallelScheduler(table, time.Minute, 2, 1, testLogger())

	// Act
	s.ProcessBatches(context.Background())

	// Assert: ни один due-монитор не пропущен за один тик, даже когда
	// проверенные строки выпадают из выборки между батчами
	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, table.checked)
	assert.Empty(t, table.due)
}

func TestProcessBatches_StopsOnFindError(t *testing.T) {
	// Arrange
	checker := mocks.NewMonitorChecker(t)
	checker.On("FindDue", mock.Anything, 100, int64(0)).Return(nil, assert.AnError).Once()

	s := scheduler.NewParallelScheduler(checker, time.Minute, 100, 4, testLogger())

	// Act
	s.ProcessBatches(context.Background())

	// Assert
	checker.AssertNotCalled(t, "CheckMonitor", mock.Anything, mock.Anything)
}

func TestProcessBatches_CheckErrorDoesNotStopBatch(t *testing.T) {
	// Arrange
	checker := mocks.NewMonitorChecker(t)

	checker.On("FindDue", mock.Anything, 100, int64(0)).Return(dueMonitors(1, 2), nil).Once()
	checker.On("FindDue", mock.Anything, 100, int64(2)).Return([]*models.Monitor{}, nil).Once()
	checker.On("CheckMonitor", mock.Anything, int64(1)).Return(assert.AnError).Once()
	checker.On("CheckMonitor", mock.Anything, int64(2)).Return(nil).Once()

	s := scheduler.NewParallelScheduler(checker, time.Minute, 100, 1, testLogger())

	// Act
	s.ProcessBatches(context.Background())

	// Assert: ошибка одного монитора не прерывает обработку остальных
}

func TestScheduler_StartStop(t *testing.T) {
	// Arrange
	checker := mocks.NewMonitorChecker(t)
	checker.On("FindDue", mock.Anything, 100, int64(0)).Return([]*models.Monitor{}, nil)

	s := scheduler.NewParallelScheduler(checker, 50*time.Millisecond, 100, 2, testLogger())

	// Act
	s.Start()
	time.Sleep(120 * time.Millisecond)
	s.Stop()
}
