package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cacheport "commscore/internal/infrastructure/cache/port"
	"commscore/internal/pkg/apperror"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
	repository "commscore/internal/pkg/tenancy/persistence/repository/port"
)

const entitlementTTL = 60 * time.Second

// RequireCapabilityUseCase checks that the workspace plan grants a named
// capability. Snapshots are cached read-through with a short TTL so a plan
// change propagates within a minute without hitting billing on every request.
type RequireCapabilityUseCase struct {
	Entitlements repository.EntitlementResolver
	Cache        cacheport.Cache
}

func NewRequireCapabilityUseCase(resolver repository.EntitlementResolver, cache cacheport.Cache) *RequireCapabilityUseCase {
	return &RequireCapabilityUseCase{Entitlements: resolver, Cache: cache}
}

// Execute returns apperror.ErrEntitlementRequired when the capability is not
// granted. That outcome is distinct from ErrForbidden so callers can render
// an upgrade prompt instead of a generic denial.
func (uc *RequireCapabilityUseCase) Execute(ctx context.Context, workspaceID, capability string) error {
	ent, err := uc.snapshot(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("resolve entitlement: %w", err)
	}
	if !ent.Grants(capability) {
		return fmt.Errorf("%w: %s", apperror.ErrEntitlementRequired, capability)
	}
	return nil
}

// Check is the non-failing variant used by webhook paths, which must no-op
// rather than error when access has been revoked.
func (uc *RequireCapabilityUseCase) Check(ctx context.Context, workspaceID, capability string) (bool, error) {
	ent, err := uc.snapshot(ctx, workspaceID)
	if err != nil {
		return false, err
	}
	return ent.Grants(capability), nil
}

func (uc *RequireCapabilityUseCase) snapshot(ctx context.Context, workspaceID string) (tenancy.Entitlement, error) {
	key := "entitlement:" + workspaceID
	if uc.Cache != nil {
		if raw, err := uc.Cache.Get(ctx, key); err == nil {
			var ent tenancy.Entitlement
			if err := json.Unmarshal([]byte(raw), &ent); err == nil {
				return ent, nil
			}
			// Unparseable cache entry: fall through to the resolver.
		}
	}
	ent, err := uc.Entitlements.Resolve(ctx, workspaceID)
	if err != nil {
		return tenancy.Entitlement{}, err
	}
	if uc.Cache != nil {
		if raw, err := json.Marshal(ent); err == nil {
			_ = uc.Cache.Set(ctx, key, string(raw), entitlementTTL)
		}
	}
	return ent, nil
}
