package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	retention "commscore/internal/pkg/retention/application/domain"
	"commscore/internal/pkg/retention/persistence/repository/port"
)

var ErrPersistence = errors.New("retention persistence failed")

// SweepUseCase runs one cutoff-based deletion pass across all entity
// classes in child-before-parent order. Deletion happens in bounded
// batches, so cancelling mid-run loses nothing; the next run resumes
// from wherever this one stopped.
type SweepUseCase struct {
	Policy retention.Policy
	Repo   port.SweepRepository
}

func NewSweepUseCase(policy retention.Policy, repo port.SweepRepository) *SweepUseCase {
	return &SweepUseCase{Policy: policy, Repo: repo}
}

func (uc *SweepUseCase) Execute(ctx context.Context, dryRun bool) ([]retention.ClassResult, error) {
	now := time.Now()
	results := make([]retention.ClassResult, 0, len(retention.SweepOrder))
	for _, class := range retention.SweepOrder {
		cutoff := now.Add(-uc.Policy.Window(class))
		result := retention.ClassResult{Class: class, Cutoff: cutoff, DryRun: dryRun}

		if dryRun {
			count, err := uc.Repo.CountExpired(ctx, class, cutoff)
			if err != nil {
				return nil, fmt.Errorf("%w: count %s: %v", ErrPersistence, class, err)
			}
			result.Deleted = count
			results = append(results, result)
			continue
		}

		for {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			deleted, err := uc.Repo.DeleteExpiredBatch(ctx, class, cutoff, uc.Policy.BatchSize)
			if err != nil {
				return nil, fmt.Errorf("%w: delete %s: %v", ErrPersistence, class, err)
			}
			result.Deleted += deleted
			if deleted < int64(uc.Policy.BatchSize) {
				break
			}
		}
		log.Printf("retention: swept %s deleted=%d cutoff=%s", class, result.Deleted, cutoff.Format(time.RFC3339))
		results = append(results, result)
	}
	return results, nil
}
