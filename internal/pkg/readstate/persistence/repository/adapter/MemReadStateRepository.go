package adapter

import (
	"context"
	"sync"
	"time"

	domain "commscore/internal/pkg/readstate/application/domain"
)

// MemReadStateRepository is an in-memory ReadStateRepository for tests.
type MemReadStateRepository struct {
	mu     sync.Mutex
	states map[string]domain.State
}

func NewMemReadStateRepository() *MemReadStateRepository {
	return &MemReadStateRepository{states: make(map[string]domain.State)}
}

func stateKey(threadID, userID string) string { return threadID + "|" + userID }

func (r *MemReadStateRepository) Get(ctx context.Context, threadID string, userID string) (domain.State, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[stateKey(threadID, userID)]
	return state, ok, nil
}

func (r *MemReadStateRepository) Upsert(ctx context.Context, state domain.State) (domain.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().Truncate(time.Microsecond)
	state.LastReadAt = &now
	r.states[stateKey(state.ThreadID, state.UserID)] = state
	return state, nil
}

// MemAnchorResolver resolves anchors from a registered map for tests.
type MemAnchorResolver struct {
	mu   sync.Mutex
	keys map[string]time.Time
}

func NewMemAnchorResolver() *MemAnchorResolver {
	return &MemAnchorResolver{keys: make(map[string]time.Time)}
}

// Register binds an anchor id within a thread to its ordering key.
func (r *MemAnchorResolver) Register(threadID, anchorID string, key time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[stateKey(threadID, anchorID)] = key
}

// Forget removes an anchor, simulating deletion of its target row.
func (r *MemAnchorResolver) Forget(threadID, anchorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.keys, stateKey(threadID, anchorID))
}

func (r *MemAnchorResolver) ResolveAnchor(ctx context.Context, threadID string, anchorID string) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.keys[stateKey(threadID, anchorID)]
	return key, ok, nil
}
