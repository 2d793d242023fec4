package adapter

import (
	"context"
	"sync"
	"time"

	retention "commscore/internal/pkg/retention/application/domain"
)

// MemSweepRepository models each class as a bag of timestamped rows for
// sweep tests.
type MemSweepRepository struct {
	mu   sync.Mutex
	rows map[retention.Class][]time.Time
}

func NewMemSweepRepository() *MemSweepRepository {
	return &MemSweepRepository{rows: make(map[retention.Class][]time.Time)}
}

// Seed adds n rows of the class stamped at the given time.
func (r *MemSweepRepository) Seed(class retention.Class, at time.Time, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < n; i++ {
		r.rows[class] = append(r.rows[class], at)
	}
}

// Remaining returns the live row count for a class.
func (r *MemSweepRepository) Remaining(class retention.Class) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows[class])
}

func (r *MemSweepRepository) CountExpired(ctx context.Context, class retention.Class, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, at := range r.rows[class] {
		if at.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (r *MemSweepRepository) DeleteExpiredBatch(ctx context.Context, class retention.Class, cutoff time.Time, batch int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var (
		kept    []time.Time
		deleted int64
	)
	for _, at := range r.rows[class] {
		if at.Before(cutoff) && deleted < int64(batch) {
			deleted++
			continue
		}
		kept = append(kept, at)
	}
	r.rows[class] = kept
	return deleted, nil
}
