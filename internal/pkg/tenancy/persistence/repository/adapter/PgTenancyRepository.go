package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

// PgMembershipRepository reads workspace membership rows.
type PgMembershipRepository struct {
	pool *pgxpool.Pool
}

func NewPgMembershipRepository(pool *pgxpool.Pool) *PgMembershipRepository {
	return &PgMembershipRepository{pool: pool}
}

func (r *PgMembershipRepository) FindRole(ctx context.Context, workspaceID, userID string) (tenancy.Role, bool, error) {
	if r == nil || r.pool == nil {
		return "", false, errors.New("PgMembershipRepository: nil pool")
	}
	var role string
	err := r.pool.QueryRow(ctx, `
		SELECT role
		FROM workspace_members
		WHERE workspace_id = $1::uuid AND user_id = $2::uuid AND removed_at IS NULL
	`, workspaceID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return tenancy.Role(role), true, nil
}

// PgEntitlementResolver reads the plan snapshot maintained by billing.
type PgEntitlementResolver struct {
	pool *pgxpool.Pool
}

func NewPgEntitlementResolver(pool *pgxpool.Pool) *PgEntitlementResolver {
	return &PgEntitlementResolver{pool: pool}
}

func (r *PgEntitlementResolver) Resolve(ctx context.Context, workspaceID string) (tenancy.Entitlement, error) {
	if r == nil || r.pool == nil {
		return tenancy.Entitlement{}, errors.New("PgEntitlementResolver: nil pool")
	}
	var (
		plan, status string
		caps         []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT plan, status, capabilities
		FROM workspace_plans
		WHERE workspace_id = $1::uuid
	`, workspaceID).Scan(&plan, &status, &caps)
	if errors.Is(err, pgx.ErrNoRows) {
		// No plan row means a workspace that never subscribed: nothing granted.
		return tenancy.Entitlement{Status: "none", Capabilities: map[string]bool{}, FetchedAt: time.Now().UTC()}, nil
	}
	if err != nil {
		return tenancy.Entitlement{}, err
	}
	capabilities, err := decodeCapabilities(caps)
	if err != nil {
		return tenancy.Entitlement{}, err
	}
	return tenancy.Entitlement{
		Plan:         plan,
		Status:       status,
		Capabilities: capabilities,
		FetchedAt:    time.Now().UTC(),
	}, nil
}

// decodeCapabilities accepts both shapes billing has written over time:
// the object form {"CAP": true} and the older array form ["CAP"].
func decodeCapabilities(raw []byte) (map[string]bool, error) {
	capabilities := map[string]bool{}
	if len(raw) == 0 {
		return capabilities, nil
	}
	if err := json.Unmarshal(raw, &capabilities); err == nil {
		return capabilities, nil
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("workspace_plans.capabilities: %w", err)
	}
	for _, name := range names {
		capabilities[name] = true
	}
	return capabilities, nil
}

// PassthroughSessionResolver trusts the authenticating edge: the forwarded
// credential already is the verified user id.
type PassthroughSessionResolver struct{}

func (PassthroughSessionResolver) ResolveUser(_ context.Context, credential string) (string, error) {
	return credential, nil
}
