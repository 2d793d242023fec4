package usecase

import (
	"context"
	"testing"
	"time"

	retention "commscore/internal/pkg/retention/application/domain"
	"commscore/internal/pkg/retention/persistence/repository/adapter"
)

func testPolicy() retention.Policy {
	return retention.Policy{
		ChatWindow:  90 * 24 * time.Hour,
		CommsWindow: 365 * 24 * time.Hour,
		BatchSize:   3,
	}
}

func TestSweepDeletesOnlyExpired(t *testing.T) {
	repo := adapter.NewMemSweepRepository()
	now := time.Now()
	repo.Seed(retention.ClassChatMessages, now.Add(-100*24*time.Hour), 7)
	repo.Seed(retention.ClassChatMessages, now.Add(-time.Hour), 4)
	repo.Seed(retention.ClassCommEvents, now.Add(-400*24*time.Hour), 2)

	results, err := NewSweepUseCase(testPolicy(), repo).Execute(context.Background(), false)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	byClass := make(map[retention.Class]retention.ClassResult)
	for _, result := range results {
		byClass[result.Class] = result
	}
	if got := byClass[retention.ClassChatMessages].Deleted; got != 7 {
		t.Fatalf("chat deleted = %d, want 7", got)
	}
	if got := byClass[retention.ClassCommEvents].Deleted; got != 2 {
		t.Fatalf("events deleted = %d, want 2", got)
	}
	if remaining := repo.Remaining(retention.ClassChatMessages); remaining != 4 {
		t.Fatalf("chat remaining = %d, want 4", remaining)
	}
}

func TestSweepConvergesToNoOp(t *testing.T) {
	repo := adapter.NewMemSweepRepository()
	now := time.Now()
	repo.Seed(retention.ClassSmsMessages, now.Add(-400*24*time.Hour), 10)

	uc := NewSweepUseCase(testPolicy(), repo)
	if _, err := uc.Execute(context.Background(), false); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	results, err := uc.Execute(context.Background(), false)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	for _, result := range results {
		if result.Deleted != 0 {
			t.Fatalf("second sweep deleted %d rows of %s, want fixed point", result.Deleted, result.Class)
		}
	}
}

func TestSweepDryRunDeletesNothing(t *testing.T) {
	repo := adapter.NewMemSweepRepository()
	now := time.Now()
	repo.Seed(retention.ClassCalls, now.Add(-400*24*time.Hour), 5)

	results, err := NewSweepUseCase(testPolicy(), repo).Execute(context.Background(), true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	byClass := make(map[retention.Class]retention.ClassResult)
	for _, result := range results {
		if !result.DryRun {
			t.Fatalf("result %+v not flagged dry run", result)
		}
		byClass[result.Class] = result
	}
	if got := byClass[retention.ClassCalls].Deleted; got != 5 {
		t.Fatalf("calls would-delete = %d, want 5", got)
	}
	if remaining := repo.Remaining(retention.ClassCalls); remaining != 5 {
		t.Fatalf("calls remaining = %d, want untouched 5", remaining)
	}
}

func TestSweepRespectsOrder(t *testing.T) {
	repo := adapter.NewMemSweepRepository()
	results, err := NewSweepUseCase(testPolicy(), repo).Execute(context.Background(), false)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(results) != len(retention.SweepOrder) {
		t.Fatalf("results = %d, want %d", len(results), len(retention.SweepOrder))
	}
	for i, result := range results {
		if result.Class != retention.SweepOrder[i] {
			t.Fatalf("results[%d] = %s, want %s", i, result.Class, retention.SweepOrder[i])
		}
	}
}
