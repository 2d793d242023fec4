package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	comms "commscore/internal/pkg/comms/application/domain"
)

// PgCommsRepository implements the directory and ledger ports over
// Postgres. Webhook ingestion has no caller identity, so this repository
// carries no scope; workspace resolution happens through the phone
// number or provider sid lookups.
type PgCommsRepository struct {
	pool *pgxpool.Pool
}

func NewPgCommsRepository(pool *pgxpool.Pool) *PgCommsRepository {
	return &PgCommsRepository{pool: pool}
}

func (r *PgCommsRepository) guard() error {
	if r.pool == nil {
		return errors.New("comms repository: nil pool")
	}
	return nil
}

func (r *PgCommsRepository) FindByE164(ctx context.Context, e164 string) (comms.PhoneNumber, bool, error) {
	if err := r.guard(); err != nil {
		return comms.PhoneNumber{}, false, err
	}
	var pn comms.PhoneNumber
	err := r.pool.QueryRow(ctx, `
		SELECT id, workspace_id, e164, assigned_to_user_id
		FROM phone_numbers
		WHERE e164 = $1 AND released_at IS NULL`,
		e164,
	).Scan(&pn.ID, &pn.WorkspaceID, &pn.E164, &pn.AssignedToUserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return comms.PhoneNumber{}, false, nil
	}
	if err != nil {
		return comms.PhoneNumber{}, false, err
	}
	return pn, true, nil
}

const conversationColumns = `id, workspace_id, contact_id, listing_id, phone_number_id,
	assigned_to_user_id, other_party_e164, display_name, thread_key,
	last_message_at, last_inbound_at, last_outbound_at, created_at, updated_at`

func scanConversation(row pgx.Row, conv *comms.Conversation) error {
	return row.Scan(
		&conv.ID, &conv.WorkspaceID, &conv.ContactID, &conv.ListingID, &conv.PhoneNumberID,
		&conv.AssignedToUserID, &conv.OtherPartyE164, &conv.DisplayName, &conv.ThreadKey,
		&conv.LastMessageAt, &conv.LastInboundAt, &conv.LastOutboundAt, &conv.CreatedAt, &conv.UpdatedAt,
	)
}

func (r *PgCommsRepository) UpsertConversation(ctx context.Context, conv comms.Conversation) (comms.Conversation, bool, error) {
	if err := r.guard(); err != nil {
		return comms.Conversation{}, false, err
	}
	var (
		stored   comms.Conversation
		inserted bool
	)
	err := r.pool.QueryRow(ctx, `
		INSERT INTO conversations (
			id, workspace_id, contact_id, listing_id, phone_number_id,
			assigned_to_user_id, other_party_e164, display_name, thread_key,
			created_at, updated_at
		)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5::uuid, $6::uuid, $7, $8, $9, now(), now())
		ON CONFLICT (workspace_id, thread_key) DO UPDATE
		SET updated_at = now()
		RETURNING `+conversationColumns+`, (xmax = 0) AS inserted`,
		conv.ID, conv.WorkspaceID, conv.ContactID, conv.ListingID, conv.PhoneNumberID,
		conv.AssignedToUserID, conv.OtherPartyE164, conv.DisplayName, conv.ThreadKey,
	).Scan(
		&stored.ID, &stored.WorkspaceID, &stored.ContactID, &stored.ListingID, &stored.PhoneNumberID,
		&stored.AssignedToUserID, &stored.OtherPartyE164, &stored.DisplayName, &stored.ThreadKey,
		&stored.LastMessageAt, &stored.LastInboundAt, &stored.LastOutboundAt, &stored.CreatedAt, &stored.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return comms.Conversation{}, false, err
	}
	return stored, inserted, nil
}

const smsColumns = `id, workspace_id, conversation_id, contact_id, listing_id, phone_number_id,
	direction, body, status, error_code, provider_sid, occurred_at, created_at`

func scanSms(row pgx.Row, msg *comms.SmsMessage, inserted *bool) error {
	targets := []any{
		&msg.ID, &msg.WorkspaceID, &msg.ConversationID, &msg.ContactID, &msg.ListingID, &msg.PhoneNumberID,
		&msg.Direction, &msg.Body, &msg.Status, &msg.ErrorCode, &msg.ProviderSid, &msg.OccurredAt, &msg.CreatedAt,
	}
	if inserted != nil {
		targets = append(targets, inserted)
	}
	return row.Scan(targets...)
}

func (r *PgCommsRepository) InsertSmsBySid(ctx context.Context, msg comms.SmsMessage) (comms.SmsMessage, bool, error) {
	if err := r.guard(); err != nil {
		return comms.SmsMessage{}, false, err
	}
	var (
		stored   comms.SmsMessage
		inserted bool
	)
	err := scanSms(r.pool.QueryRow(ctx, `
		INSERT INTO sms_messages (
			id, workspace_id, conversation_id, contact_id, listing_id, phone_number_id,
			direction, body, status, error_code, provider_sid, occurred_at, created_at
		)
		VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6::uuid, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (provider_sid) DO UPDATE
		SET provider_sid = EXCLUDED.provider_sid
		RETURNING `+smsColumns+`, (xmax = 0) AS inserted`,
		msg.ID, msg.WorkspaceID, msg.ConversationID, msg.ContactID, msg.ListingID, msg.PhoneNumberID,
		msg.Direction, msg.Body, msg.Status, msg.ErrorCode, msg.ProviderSid, msg.OccurredAt,
	), &stored, &inserted)
	if err != nil {
		return comms.SmsMessage{}, false, err
	}
	return stored, inserted, nil
}

func (r *PgCommsRepository) FindSmsBySid(ctx context.Context, providerSid string) (comms.SmsMessage, bool, error) {
	if err := r.guard(); err != nil {
		return comms.SmsMessage{}, false, err
	}
	var msg comms.SmsMessage
	err := scanSms(r.pool.QueryRow(ctx,
		`SELECT `+smsColumns+` FROM sms_messages WHERE provider_sid = $1`,
		providerSid,
	), &msg, nil)
	if errors.Is(err, pgx.ErrNoRows) {
		return comms.SmsMessage{}, false, nil
	}
	if err != nil {
		return comms.SmsMessage{}, false, err
	}
	return msg, true, nil
}

func (r *PgCommsRepository) UpdateSmsStatus(ctx context.Context, messageID string, status string, errorCode *string) error {
	if err := r.guard(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE sms_messages SET status = $2, error_code = $3 WHERE id = $1`,
		messageID, status, errorCode,
	)
	return err
}

func (r *PgCommsRepository) InsertCallBySid(ctx context.Context, call comms.Call) (comms.Call, bool, error) {
	if err := r.guard(); err != nil {
		return comms.Call{}, false, err
	}
	var (
		stored   comms.Call
		inserted bool
	)
	err := r.pool.QueryRow(ctx, `
		INSERT INTO calls (
			id, workspace_id, conversation_id, phone_number_id,
			direction, status, recording_url, duration_secs, provider_sid, occurred_at, created_at
		)
		VALUES ($1::uuid, $2::uuid, $3::uuid, $4::uuid, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (provider_sid) DO UPDATE
		SET provider_sid = EXCLUDED.provider_sid
		RETURNING id, workspace_id, conversation_id, phone_number_id,
			direction, status, recording_url, duration_secs, provider_sid, occurred_at, created_at,
			(xmax = 0) AS inserted`,
		call.ID, call.WorkspaceID, call.ConversationID, call.PhoneNumberID,
		call.Direction, call.Status, call.RecordingURL, call.DurationSecs, call.ProviderSid, call.OccurredAt,
	).Scan(
		&stored.ID, &stored.WorkspaceID, &stored.ConversationID, &stored.PhoneNumberID,
		&stored.Direction, &stored.Status, &stored.RecordingURL, &stored.DurationSecs, &stored.ProviderSid,
		&stored.OccurredAt, &stored.CreatedAt,
		&inserted,
	)
	if err != nil {
		return comms.Call{}, false, err
	}
	return stored, inserted, nil
}

func (r *PgCommsRepository) AppendEvent(ctx context.Context, event comms.CommEvent) (comms.CommEvent, error) {
	if err := r.guard(); err != nil {
		return comms.CommEvent{}, err
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO comm_events (id, workspace_id, conversation_id, type, occurred_at, payload)
		VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6)
		RETURNING id, workspace_id, conversation_id, type, occurred_at, payload`,
		event.ID, event.WorkspaceID, event.ConversationID, event.Type, event.OccurredAt, event.Payload,
	).Scan(&event.ID, &event.WorkspaceID, &event.ConversationID, &event.Type, &event.OccurredAt, &event.Payload)
	if err != nil {
		return comms.CommEvent{}, err
	}
	return event, nil
}

func (r *PgCommsRepository) LatestDeliveryStatus(ctx context.Context, conversationID string, messageID string) (string, bool, error) {
	if err := r.guard(); err != nil {
		return "", false, err
	}
	var status string
	err := r.pool.QueryRow(ctx, `
		SELECT payload->>'status'
		FROM comm_events
		WHERE conversation_id = $1 AND type = $2 AND payload->>'messageId' = $3
		ORDER BY occurred_at DESC, id DESC
		LIMIT 1`,
		conversationID, comms.EventDeliveryUpdate, messageID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return status, true, nil
}

func (r *PgCommsRepository) TouchConversation(ctx context.Context, conversationID string, direction comms.Direction, at time.Time) error {
	if err := r.guard(); err != nil {
		return err
	}
	query := `
		UPDATE conversations
		SET last_message_at = $2, last_inbound_at = $2, updated_at = now()
		WHERE id = $1`
	if direction == comms.DirectionOutbound {
		query = `
		UPDATE conversations
		SET last_message_at = $2, last_outbound_at = $2, updated_at = now()
		WHERE id = $1`
	}
	_, err := r.pool.Exec(ctx, query, conversationID, at)
	return err
}
