package usecase

import (
	"context"
	"fmt"

	"commscore/internal/pkg/apperror"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
	repository "commscore/internal/pkg/tenancy/persistence/repository/port"
)

// ResolveIdentityInput carries the raw request attributes the gate needs.
type ResolveIdentityInput struct {
	Credential  string // forwarded by the authenticating edge; empty means anonymous
	WorkspaceID string
}

// ResolveIdentityUseCase turns a request into a workspace-scoped Identity.
// Checks run in a fixed order: identity, then workspace selection, then
// membership. Each failure short-circuits before any data access.
type ResolveIdentityUseCase struct {
	Sessions repository.SessionResolver
	Members  repository.MembershipRepository
}

func NewResolveIdentityUseCase(sessions repository.SessionResolver, members repository.MembershipRepository) *ResolveIdentityUseCase {
	return &ResolveIdentityUseCase{Sessions: sessions, Members: members}
}

func (uc *ResolveIdentityUseCase) Execute(ctx context.Context, in ResolveIdentityInput) (tenancy.Identity, error) {
	if in.Credential == "" {
		return tenancy.Identity{}, apperror.ErrUnauthorized
	}
	userID, err := uc.Sessions.ResolveUser(ctx, in.Credential)
	if err != nil || userID == "" {
		return tenancy.Identity{}, apperror.ErrUnauthorized
	}
	if in.WorkspaceID == "" {
		return tenancy.Identity{}, apperror.ErrNoWorkspace
	}
	role, ok, err := uc.Members.FindRole(ctx, in.WorkspaceID, userID)
	if err != nil {
		return tenancy.Identity{}, fmt.Errorf("resolve membership: %w", err)
	}
	if !ok {
		return tenancy.Identity{}, fmt.Errorf("%w: not a member of workspace", apperror.ErrForbidden)
	}
	return tenancy.Identity{UserID: userID, WorkspaceID: in.WorkspaceID, Role: role}, nil
}
