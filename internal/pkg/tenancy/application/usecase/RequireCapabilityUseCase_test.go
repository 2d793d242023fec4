package usecase

import (
	"context"
	"errors"
	"testing"

	cacheadapter "commscore/internal/infrastructure/cache/adapter"
	"commscore/internal/pkg/apperror"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

type fakeEntitlements struct {
	byWorkspace map[string]tenancy.Entitlement
	resolves    int
}

func (f *fakeEntitlements) Resolve(ctx context.Context, workspaceID string) (tenancy.Entitlement, error) {
	f.resolves++
	return f.byWorkspace[workspaceID], nil
}

func TestRequireCapabilityGrantedAndDenied(t *testing.T) {
	resolver := &fakeEntitlements{byWorkspace: map[string]tenancy.Entitlement{
		"w1": {Plan: "pro", Status: "active", Capabilities: map[string]bool{tenancy.CapabilityComms: true}},
		"w2": {Plan: "free", Status: "active"},
	}}
	uc := NewRequireCapabilityUseCase(resolver, cacheadapter.NewMemoryCache())
	ctx := context.Background()

	if err := uc.Execute(ctx, "w1", tenancy.CapabilityComms); err != nil {
		t.Fatalf("granted workspace: %v", err)
	}
	err := uc.Execute(ctx, "w2", tenancy.CapabilityComms)
	if !errors.Is(err, apperror.ErrEntitlementRequired) {
		t.Fatalf("err = %v, want ErrEntitlementRequired", err)
	}
	if status := apperror.Status(err); status != 402 {
		t.Fatalf("status = %d, want 402", status)
	}
}

func TestRequireCapabilityCachesSnapshot(t *testing.T) {
	resolver := &fakeEntitlements{byWorkspace: map[string]tenancy.Entitlement{
		"w1": {Plan: "pro", Status: "active", Capabilities: map[string]bool{tenancy.CapabilityComms: true}},
	}}
	uc := NewRequireCapabilityUseCase(resolver, cacheadapter.NewMemoryCache())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := uc.Execute(ctx, "w1", tenancy.CapabilityComms); err != nil {
			t.Fatalf("execute %d: %v", i, err)
		}
	}
	if resolver.resolves != 1 {
		t.Fatalf("resolver hit %d times, want 1 (cached)", resolver.resolves)
	}
}

func TestCheckReportsWithoutFailing(t *testing.T) {
	resolver := &fakeEntitlements{byWorkspace: map[string]tenancy.Entitlement{}}
	uc := NewRequireCapabilityUseCase(resolver, cacheadapter.NewMemoryCache())

	granted, err := uc.Check(context.Background(), "w-gone", tenancy.CapabilityComms)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if granted {
		t.Fatal("granted = true for workspace without a plan")
	}
}
