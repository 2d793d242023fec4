package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	domain "commscore/internal/pkg/readstate/application/domain"
	"commscore/internal/pkg/readstate/persistence/repository/port"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

var ErrPersistence = errors.New("read state persistence failed")

// ThreadGate verifies the caller may read the thread. Implementations
// return apperror.ErrNotFound for threads that do not exist or are not
// visible to the caller.
type ThreadGate interface {
	RequireThread(ctx context.Context, threadID string) error
}

// GateFunc adapts a function to the ThreadGate interface.
type GateFunc func(ctx context.Context, threadID string) error

func (f GateFunc) RequireThread(ctx context.Context, threadID string) error {
	return f(ctx, threadID)
}

// MarkReadUseCase advances (or clears) a per-user read pointer. One
// instance serves chat channels, another comms conversations; the anchor
// semantics are identical.
type MarkReadUseCase struct {
	Scope    tenancy.Identity
	Gate     ThreadGate
	Resolver port.AnchorResolver
	Repo     port.ReadStateRepository
}

func NewMarkReadUseCase(scope tenancy.Identity, gate ThreadGate, resolver port.AnchorResolver, repo port.ReadStateRepository) *MarkReadUseCase {
	return &MarkReadUseCase{Scope: scope, Gate: gate, Resolver: resolver, Repo: repo}
}

// Execute applies the monotonic update rule. A nil anchor clears the
// pointer unconditionally. A present anchor is stored when there is no
// existing pointer, when it resolves to a key at or past the existing
// one, or when the existing anchor no longer resolves. An older
// resolving anchor is a silent no-op that returns the stored state.
func (uc *MarkReadUseCase) Execute(ctx context.Context, threadID string, anchorID *string) (domain.State, error) {
	if err := uc.Gate.RequireThread(ctx, threadID); err != nil {
		return domain.State{}, err
	}

	next := domain.State{ThreadID: threadID, UserID: uc.Scope.UserID, AnchorID: anchorID}
	if anchorID == nil {
		return uc.persist(ctx, next)
	}

	current, found, err := uc.Repo.Get(ctx, threadID, uc.Scope.UserID)
	if err != nil {
		log.Printf("readstate: load pointer thread=%s: %v", threadID, err)
		return domain.State{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !found || current.AnchorID == nil {
		return uc.persist(ctx, next)
	}

	currentKey, currentOK, err := uc.Resolver.ResolveAnchor(ctx, threadID, *current.AnchorID)
	if err != nil {
		return domain.State{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	candidateKey, candidateOK, err := uc.Resolver.ResolveAnchor(ctx, threadID, *anchorID)
	if err != nil {
		return domain.State{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// A stale stored anchor (target since deleted) loses to any candidate.
	if !currentOK {
		return uc.persist(ctx, next)
	}
	if !candidateOK || candidateKey.Before(currentKey) {
		return current, nil
	}
	return uc.persist(ctx, next)
}

// Get returns the caller's stored pointer for the thread, zero-valued
// when none exists.
func (uc *MarkReadUseCase) Get(ctx context.Context, threadID string) (domain.State, error) {
	if err := uc.Gate.RequireThread(ctx, threadID); err != nil {
		return domain.State{}, err
	}
	state, found, err := uc.Repo.Get(ctx, threadID, uc.Scope.UserID)
	if err != nil {
		return domain.State{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !found {
		return domain.State{ThreadID: threadID, UserID: uc.Scope.UserID}, nil
	}
	return state, nil
}

func (uc *MarkReadUseCase) persist(ctx context.Context, state domain.State) (domain.State, error) {
	stored, err := uc.Repo.Upsert(ctx, state)
	if err != nil {
		log.Printf("readstate: upsert pointer thread=%s: %v", state.ThreadID, err)
		return domain.State{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return stored, nil
}
