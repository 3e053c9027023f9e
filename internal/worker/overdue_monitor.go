package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/library/internal/domain/model"
)

// OverdueSource exposes the subset of application functionality required by the monitor.
type OverdueSource interface {
	OverdueBorrows(ctx context.Context, after model.OverdueCursor, limit int) ([]model.Borrow, error)
}

// OverdueMonitor periodically walks every open loan past its due date and
// reports each of them once. A loan is forgotten when it leaves the overdue set.
type OverdueMonitor struct {
	source       OverdueSource
	pollInterval time.Duration
	batchSize    int
	logger       *slog.Logger
	now          func() time.Time

	reported map[int64]struct{}
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	mu       sync.Mutex
}

// NewOverdueMonitor constructs the overdue loan monitor.
func NewOverdueMonitor(source OverdueSource, pollInterval time.Duration, batchSize int, logger *slog.Logger) *OverdueMonitor {
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &OverdueMonitor{
		source:       source,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		logger:       logger,
		now:          time.Now,
		reported:     make(map[int64]struct{}),
	}
}

// Start launches background scanning.
func (m *OverdueMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	jobs := make(chan model.Borrow, m.batchSize)

	m.wg.Add(2)
	go m.report(runCtx, jobs)
	go m.dispatch(runCtx, jobs)
}

// Stop waits for the scanner and reporter to finish.
func (m *OverdueMonitor) Stop() {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()

	m.wg.Wait()
}

// Reported reports whether the loan has already been logged as overdue.
func (m *OverdueMonitor) Reported(borrowID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.reported[borrowID]
	return ok
}

func (m *OverdueMonitor) dispatch(ctx context.Context, jobs chan<- model.Borrow) {
	defer m.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.scan(ctx, jobs)
		}
	}
}

func (m *OverdueMonitor) scan(ctx context.Context, jobs chan<- model.Borrow) {
	var cursor model.OverdueCursor
	seen := make(map[int64]struct{})
	for {
		borrows, err := m.source.OverdueBorrows(ctx, cursor, m.batchSize)
		if err != nil {
			m.logger.Error("fetch overdue borrows failed", slog.String("error", err.Error()))
			return
		}

		for _, borrow := range borrows {
			seen[borrow.ID] = struct{}{}
			if !m.markReported(borrow.ID) {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- borrow:
			}
		}

		if len(borrows) < m.batchSize {
			break
		}
		next := borrows[len(borrows)-1].OverdueCursor()
		if !cursor.Precedes(borrows[len(borrows)-1]) {
			m.logger.Error("overdue listing did not advance", slog.Int64("borrow_id", next.ID))
			return
		}
		cursor = next
		if ctx.Err() != nil {
			return
		}
	}

	m.forget(seen)
}

func (m *OverdueMonitor) markReported(borrowID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reported[borrowID]; ok {
		return false
	}
	m.reported[borrowID] = struct{}{}
	return true
}

// forget drops loans that were returned or removed since they were reported.
func (m *OverdueMonitor) forget(overdue map[int64]struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.reported {
		if _, ok := overdue[id]; !ok {
			delete(m.reported, id)
		}
	}
}

func (m *OverdueMonitor) report(ctx context.Context, jobs <-chan model.Borrow) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case borrow, ok := <-jobs:
			if !ok {
				return
			}
			m.logger.Warn("borrow overdue",
				slog.Int64("borrow_id", borrow.ID),
				slog.Int64("user_id", borrow.UserID),
				slog.Int64("book_id", borrow.BookID),
				slog.Time("due_at", borrow.DueAt),
				slog.Duration("overdue_by", m.now().Sub(borrow.DueAt).Truncate(time.Second)),
			)
		}
	}
}
