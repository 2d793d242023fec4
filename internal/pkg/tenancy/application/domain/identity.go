package tenancy

import "time"

// Role is the caller's role within a workspace.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Elevated reports whether the role may act on other members' content.
func (r Role) Elevated() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Identity is the resolved tenant context of a request. Every data-touching
// component takes it as a mandatory parameter; nothing below the gate may
// run without one.
type Identity struct {
	UserID      string
	WorkspaceID string
	Role        Role
}

// Capability names gated by the workspace plan.
const (
	CapabilityComms       = "COMMS_ACCESS"
	CapabilityAutomations = "AUTOMATIONS_RUN"
)

// Entitlement is a plan snapshot for a workspace. Treated as a pure read;
// the billing system owns it.
type Entitlement struct {
	Plan         string          `json:"plan"`
	Status       string          `json:"status"`
	Capabilities map[string]bool `json:"capabilities"`
	FetchedAt    time.Time       `json:"fetchedAt"`
}

// Grants reports whether the named capability is enabled.
func (e Entitlement) Grants(capability string) bool {
	return e.Capabilities[capability]
}
