package port

import (
	"context"
	"time"

	retention "commscore/internal/pkg/retention/application/domain"
)

// SweepRepository deletes expired rows one bounded batch at a time so a
// run can be interrupted at any batch boundary. CountExpired backs
// dry-run mode and must not mutate anything.
type SweepRepository interface {
	CountExpired(ctx context.Context, class retention.Class, cutoff time.Time) (int64, error)
	// DeleteExpiredBatch removes at most batch rows of the class older
	// than cutoff, children first, and reports how many parents went.
	DeleteExpiredBatch(ctx context.Context, class retention.Class, cutoff time.Time, batch int) (int64, error)
}
