package repository

import (
	"context"
	"time"

	message "commscore/internal/pkg/message/application/domain"
	"commscore/internal/pkg/pagination"
)

// MessageRepository persists messages, reactions and mentions. Scoped to one
// workspace at construction; every query joins through the owning channel's
// workspace filter.
type MessageRepository interface {
	// UpsertByNonce inserts the message or, when the same
	// (channel, author, nonce) triple already exists, returns the original
	// row unchanged. The bool reports whether a new row was inserted.
	UpsertByNonce(ctx context.Context, m message.Message) (message.Message, bool, error)

	// FindByID returns the message when its channel belongs to the scope's
	// workspace. Soft-deleted messages are still returned.
	FindByID(ctx context.Context, id string) (message.Message, bool, error)

	// List returns up to limit+1 visible messages of the channel. Default
	// order is newest first; forward flips to ascending for scrolling from
	// older context toward the present.
	List(ctx context.Context, channelID string, limit int, cursor *pagination.Cursor, forward bool) ([]message.Message, error)

	// UpdateBody rewrites the body of a live message.
	UpdateBody(ctx context.Context, id, body string) (message.Message, error)

	// SoftDelete hides the message from listings.
	SoftDelete(ctx context.Context, id string) error

	// ToggleReaction atomically adds the reaction if absent or removes it
	// if present, reporting whether it is now present.
	ToggleReaction(ctx context.Context, messageID, userID, emoji string) (bool, error)

	// ListReactions returns the reactions on a message.
	ListReactions(ctx context.Context, messageID string) ([]message.Reaction, error)

	// InsertMentions writes mention rows for the message.
	InsertMentions(ctx context.Context, messageID string, userIDs []string) error

	// TouchChannelActivity advances the channel's last_message_at watermark.
	TouchChannelActivity(ctx context.Context, channelID string, at time.Time) error
}
