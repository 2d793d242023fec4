package repository

import (
	"context"
	"errors"

	channel "commscore/internal/pkg/channel/application/domain"
	"commscore/internal/pkg/pagination"
)

// ErrDuplicateKey reports that an insert collided with the live-key
// uniqueness constraint (one live channel per key and workspace).
var ErrDuplicateKey = errors.New("channel key already in use")

// ChannelRepository persists channels and memberships. Implementations are
// constructed with a tenant identity and must filter every statement on the
// workspace id; an unscoped query is not expressible through this port.
type ChannelRepository interface {
	// EnsureBoard idempotently returns the workspace's singleton board
	// channel, creating it on first access. Concurrent calls converge on
	// one row via the storage-level uniqueness constraint.
	EnsureBoard(ctx context.Context) (channel.Channel, error)

	// InsertRoom creates a ROOM channel and returns it with generated fields.
	InsertRoom(ctx context.Context, ch channel.Channel, memberIDs []string) (channel.Channel, error)

	// UpsertDM inserts a DM channel keyed by the pair's dedupe key, or
	// returns the existing live one. Both members are enrolled.
	UpsertDM(ctx context.Context, key string, memberIDs []string) (channel.Channel, bool, error)

	// FindByID returns the channel when it belongs to the scope's workspace.
	FindByID(ctx context.Context, id string) (channel.Channel, bool, error)

	// ListVisible returns up to limit+1 channels visible to the scope's
	// user, newest activity first, strictly older than the cursor.
	ListVisible(ctx context.Context, includeArchived bool, limit int, cursor *pagination.Cursor) ([]channel.Channel, error)

	// Patch applies partial updates and returns the updated row.
	Patch(ctx context.Context, id string, p channel.Patch) (channel.Channel, error)

	// IsMember reports whether userID holds a non-removed membership.
	IsMember(ctx context.Context, channelID, userID string) (bool, error)

	// MemberIDs returns the channel's live member ids.
	MemberIDs(ctx context.Context, channelID string) ([]string, error)

	// AddMember upserts a live membership (re-adding clears removed_at).
	AddMember(ctx context.Context, channelID, userID string) error

	// RemoveMember marks the membership removed. Removing an absent member
	// is a no-op.
	RemoveMember(ctx context.Context, channelID, userID string) error
}
