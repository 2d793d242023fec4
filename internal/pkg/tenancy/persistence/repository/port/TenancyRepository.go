package repository

import (
	"context"

	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

// MembershipRepository answers whether a user currently belongs to a
// workspace, and with which role. Removed memberships do not count.
type MembershipRepository interface {
	FindRole(ctx context.Context, workspaceID, userID string) (tenancy.Role, bool, error)
}

// EntitlementResolver returns the workspace's plan snapshot. The billing
// system is the source of truth; this core only reads it.
type EntitlementResolver interface {
	Resolve(ctx context.Context, workspaceID string) (tenancy.Entitlement, error)
}

// SessionResolver maps the credential forwarded by the authenticating edge
// to a user id. This core never issues or validates credentials itself.
type SessionResolver interface {
	ResolveUser(ctx context.Context, credential string) (string, error)
}
