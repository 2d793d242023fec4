package comms

import "time"

// Direction of an SMS message or call relative to the workspace.
type Direction string

const (
	DirectionInbound  Direction = "INBOUND"
	DirectionOutbound Direction = "OUTBOUND"
)

// EventType classifies append-only ledger entries. The set is open; new
// provider signals add new types without schema changes.
type EventType string

const (
	EventDeliveryUpdate EventType = "DELIVERY_UPDATE"
	EventInboundSms     EventType = "INBOUND_SMS"
	EventMissedCall     EventType = "MISSED_CALL"
	EventVoicemail      EventType = "VOICEMAIL"
	EventOptOut         EventType = "OPT_OUT"
	EventOptIn          EventType = "OPT_IN"
)

// PhoneNumber is a provisioned workspace number. Inbound webhooks route
// on the receiving number to find the owning workspace and assignee.
type PhoneNumber struct {
	ID               string `db:"id"`
	WorkspaceID      string `db:"workspace_id"`
	E164             string `db:"e164"`
	AssignedToUserID string `db:"assigned_to_user_id"`
}

// Conversation is an external customer thread over SMS or voice. It is
// user-private: only the assigned user may read or mutate it.
type Conversation struct {
	ID               string     `db:"id"`
	WorkspaceID      string     `db:"workspace_id"`
	ContactID        *string    `db:"contact_id"`
	ListingID        *string    `db:"listing_id"`
	PhoneNumberID    string     `db:"phone_number_id"`
	AssignedToUserID string     `db:"assigned_to_user_id"`
	OtherPartyE164   string     `db:"other_party_e164"`
	DisplayName      string     `db:"display_name"`
	ThreadKey        string     `db:"thread_key"`
	LastMessageAt    *time.Time `db:"last_message_at"`
	LastInboundAt    *time.Time `db:"last_inbound_at"`
	LastOutboundAt   *time.Time `db:"last_outbound_at"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// ThreadKey derives the deterministic conversation key for a workspace
// number and a counterparty.
func ThreadKey(phoneNumberID, otherPartyE164 string) string {
	return "sms:" + phoneNumberID + ":" + otherPartyE164
}

// SmsMessage records one message leg. ProviderSid is unique and is the
// idempotency anchor for webhook re-delivery.
type SmsMessage struct {
	ID             string    `db:"id"`
	WorkspaceID    string    `db:"workspace_id"`
	ConversationID string    `db:"conversation_id"`
	ContactID      *string   `db:"contact_id"`
	ListingID      *string   `db:"listing_id"`
	PhoneNumberID  string    `db:"phone_number_id"`
	Direction      Direction `db:"direction"`
	Body           string    `db:"body"`
	Status         string    `db:"status"`
	ErrorCode      *string   `db:"error_code"`
	ProviderSid    string    `db:"provider_sid"`
	OccurredAt     time.Time `db:"occurred_at"`
	CreatedAt      time.Time `db:"created_at"`
}

// Call records one voice leg, deduped by provider sid like SMS.
type Call struct {
	ID             string    `db:"id"`
	WorkspaceID    string    `db:"workspace_id"`
	ConversationID string    `db:"conversation_id"`
	PhoneNumberID  string    `db:"phone_number_id"`
	Direction      Direction `db:"direction"`
	Status         string    `db:"status"`
	RecordingURL   *string   `db:"recording_url"`
	DurationSecs   int       `db:"duration_secs"`
	ProviderSid    string    `db:"provider_sid"`
	OccurredAt     time.Time `db:"occurred_at"`
	CreatedAt      time.Time `db:"created_at"`
}

// CommEvent is a write-once ledger entry. Events are never updated and
// serve as both audit trail and read-state reference clock.
type CommEvent struct {
	ID             string         `db:"id"`
	WorkspaceID    string         `db:"workspace_id"`
	ConversationID string         `db:"conversation_id"`
	Type           EventType      `db:"type"`
	OccurredAt     time.Time      `db:"occurred_at"`
	Payload        map[string]any `db:"payload"`
}

// Suppression marks a counterparty number as opted out of outbound SMS
// for a workspace. A nil OptedOutAt means the number is clear.
type Suppression struct {
	WorkspaceID string     `db:"workspace_id"`
	E164        string     `db:"e164"`
	OptedOutAt  *time.Time `db:"opted_out_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}
