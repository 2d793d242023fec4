package port

import (
	"context"
	"time"

	comms "commscore/internal/pkg/comms/application/domain"
	"commscore/internal/pkg/pagination"
)

// PhoneNumberDirectory routes an inbound webhook to the owning workspace
// by the receiving number. Lookups run before any identity exists.
type PhoneNumberDirectory interface {
	FindByE164(ctx context.Context, e164 string) (comms.PhoneNumber, bool, error)
}

// LedgerRepository is the workspace-side write surface used by webhook
// ingestion. It carries no caller identity; the workspace is resolved
// from the receiving number or the provider sid.
type LedgerRepository interface {
	// UpsertConversation finds or creates the conversation for a thread
	// key. inserted reports whether a new row was created.
	UpsertConversation(ctx context.Context, conv comms.Conversation) (comms.Conversation, bool, error)

	// InsertSmsBySid inserts an SMS message unless the provider sid is
	// already recorded; re-delivery returns the original row.
	InsertSmsBySid(ctx context.Context, msg comms.SmsMessage) (comms.SmsMessage, bool, error)

	// FindSmsBySid looks up a message globally; delivery webhooks carry
	// only the sid.
	FindSmsBySid(ctx context.Context, providerSid string) (comms.SmsMessage, bool, error)

	// UpdateSmsStatus overwrites status and error fields unconditionally.
	UpdateSmsStatus(ctx context.Context, messageID string, status string, errorCode *string) error

	// InsertCallBySid mirrors InsertSmsBySid for voice legs.
	InsertCallBySid(ctx context.Context, call comms.Call) (comms.Call, bool, error)

	// AppendEvent writes one ledger entry. Events are write-once.
	AppendEvent(ctx context.Context, event comms.CommEvent) (comms.CommEvent, error)

	// LatestDeliveryStatus returns the status recorded by the most recent
	// DELIVERY_UPDATE event for a message, if any.
	LatestDeliveryStatus(ctx context.Context, conversationID string, messageID string) (string, bool, error)

	// TouchConversation advances activity timestamps after an inbound or
	// outbound leg.
	TouchConversation(ctx context.Context, conversationID string, direction comms.Direction, at time.Time) error
}

// ConversationRepository is the user-scoped read/delete surface. Every
// query filters on (workspace_id, assigned_to_user_id).
type ConversationRepository interface {
	FindByID(ctx context.Context, id string) (comms.Conversation, bool, error)
	List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]comms.Conversation, error)
	ListEvents(ctx context.Context, conversationID string, limit int, cursor *pagination.Cursor) ([]comms.CommEvent, error)
	// DeleteCascade removes the conversation and all child rows in one
	// transaction. Returns false when the conversation is not visible to
	// the caller.
	DeleteCascade(ctx context.Context, id string) (bool, error)
}

// SuppressionRepository tracks per-workspace opt-out state by E.164
// number.
type SuppressionRepository interface {
	SetOptOut(ctx context.Context, workspaceID string, e164 string, at time.Time) error
	ClearOptOut(ctx context.Context, workspaceID string, e164 string) error
	IsSuppressed(ctx context.Context, workspaceID string, e164 string) (bool, error)
}
