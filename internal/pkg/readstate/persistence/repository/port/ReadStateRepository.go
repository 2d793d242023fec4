package port

import (
	"context"
	"time"

	domain "commscore/internal/pkg/readstate/application/domain"
)

// AnchorResolver maps an anchor id to its ordering key within a thread.
// ok is false when the anchor does not exist, does not belong to the
// thread, or belongs to another workspace.
type AnchorResolver interface {
	ResolveAnchor(ctx context.Context, threadID string, anchorID string) (time.Time, bool, error)
}

// ReadStateRepository persists per-user read pointers. Upsert is expected
// to be monotonic at the storage level so concurrent markRead calls
// converge to the newest anchor; a nil AnchorID always wins (explicit
// clear).
type ReadStateRepository interface {
	Get(ctx context.Context, threadID string, userID string) (domain.State, bool, error)
	Upsert(ctx context.Context, state domain.State) (domain.State, error)
}
