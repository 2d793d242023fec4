package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"commscore/internal/pkg/apperror"
	"commscore/internal/pkg/readstate/persistence/repository/adapter"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

func openGate(ctx context.Context, threadID string) error { return nil }

func newFixture(t *testing.T) (*MarkReadUseCase, *adapter.MemAnchorResolver) {
	t.Helper()
	resolver := adapter.NewMemAnchorResolver()
	uc := NewMarkReadUseCase(
		tenancy.Identity{UserID: "u1", WorkspaceID: "w1", Role: tenancy.RoleMember},
		GateFunc(openGate),
		resolver,
		adapter.NewMemReadStateRepository(),
	)
	return uc, resolver
}

func ptr(s string) *string { return &s }

func TestMarkReadAdvancesPointer(t *testing.T) {
	uc, resolver := newFixture(t)
	ctx := context.Background()
	base := time.Now().Truncate(time.Microsecond)
	resolver.Register("ch1", "m1", base)
	resolver.Register("ch1", "m2", base.Add(time.Second))

	state, err := uc.Execute(ctx, "ch1", ptr("m1"))
	if err != nil {
		t.Fatalf("mark m1: %v", err)
	}
	if state.AnchorID == nil || *state.AnchorID != "m1" {
		t.Fatalf("anchor = %v, want m1", state.AnchorID)
	}

	state, err = uc.Execute(ctx, "ch1", ptr("m2"))
	if err != nil {
		t.Fatalf("mark m2: %v", err)
	}
	if state.AnchorID == nil || *state.AnchorID != "m2" {
		t.Fatalf("anchor = %v, want m2", state.AnchorID)
	}
}

func TestMarkReadOlderAnchorIsNoOp(t *testing.T) {
	uc, resolver := newFixture(t)
	ctx := context.Background()
	base := time.Now().Truncate(time.Microsecond)
	resolver.Register("ch1", "m1", base)
	resolver.Register("ch1", "m2", base.Add(time.Second))

	if _, err := uc.Execute(ctx, "ch1", ptr("m2")); err != nil {
		t.Fatalf("mark m2: %v", err)
	}
	state, err := uc.Execute(ctx, "ch1", ptr("m1"))
	if err != nil {
		t.Fatalf("mark m1: %v", err)
	}
	if state.AnchorID == nil || *state.AnchorID != "m2" {
		t.Fatalf("anchor = %v, want m2 kept", state.AnchorID)
	}
}

func TestMarkReadNilClearsUnconditionally(t *testing.T) {
	uc, resolver := newFixture(t)
	ctx := context.Background()
	resolver.Register("ch1", "m1", time.Now())

	if _, err := uc.Execute(ctx, "ch1", ptr("m1")); err != nil {
		t.Fatalf("mark m1: %v", err)
	}
	state, err := uc.Execute(ctx, "ch1", nil)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if state.AnchorID != nil {
		t.Fatalf("anchor = %v, want cleared", *state.AnchorID)
	}
}

func TestMarkReadForeignAnchorKeepsExisting(t *testing.T) {
	uc, resolver := newFixture(t)
	ctx := context.Background()
	resolver.Register("ch1", "m1", time.Now())

	if _, err := uc.Execute(ctx, "ch1", ptr("m1")); err != nil {
		t.Fatalf("mark m1: %v", err)
	}
	state, err := uc.Execute(ctx, "ch1", ptr("stranger"))
	if err != nil {
		t.Fatalf("mark stranger: %v", err)
	}
	if state.AnchorID == nil || *state.AnchorID != "m1" {
		t.Fatalf("anchor = %v, want m1 kept", state.AnchorID)
	}
}

func TestMarkReadDeletedStoredAnchorLoses(t *testing.T) {
	uc, resolver := newFixture(t)
	ctx := context.Background()
	base := time.Now().Truncate(time.Microsecond)
	resolver.Register("ch1", "m1", base)
	resolver.Register("ch1", "m2", base.Add(time.Second))

	if _, err := uc.Execute(ctx, "ch1", ptr("m2")); err != nil {
		t.Fatalf("mark m2: %v", err)
	}
	resolver.Forget("ch1", "m2")

	// m1 is older than m2 was, but m2 no longer resolves so m1 wins.
	state, err := uc.Execute(ctx, "ch1", ptr("m1"))
	if err != nil {
		t.Fatalf("mark m1: %v", err)
	}
	if state.AnchorID == nil || *state.AnchorID != "m1" {
		t.Fatalf("anchor = %v, want m1", state.AnchorID)
	}
}

func TestMarkReadGateDenied(t *testing.T) {
	resolver := adapter.NewMemAnchorResolver()
	uc := NewMarkReadUseCase(
		tenancy.Identity{UserID: "u1", WorkspaceID: "w1", Role: tenancy.RoleMember},
		GateFunc(func(ctx context.Context, threadID string) error { return apperror.ErrNotFound }),
		resolver,
		adapter.NewMemReadStateRepository(),
	)
	if _, err := uc.Execute(context.Background(), "ch1", nil); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetUnsetPointerIsZero(t *testing.T) {
	uc, _ := newFixture(t)
	state, err := uc.Get(context.Background(), "ch1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if state.AnchorID != nil || state.LastReadAt != nil {
		t.Fatalf("state = %+v, want zero pointer", state)
	}
}
