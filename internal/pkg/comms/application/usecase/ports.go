package usecase

import "context"

// EntitlementChecker is the non-failing capability probe used by webhook
// paths, where a revoked plan means "accept and drop" rather than 402.
type EntitlementChecker interface {
	Check(ctx context.Context, workspaceID, capability string) (bool, error)
}
