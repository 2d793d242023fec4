package channel

import (
	"sort"
	"strings"
	"time"
)

// Type discriminates the channel variants. BOARD is a lazily created
// workspace singleton, ROOM a named optionally-private channel, DM a
// two-member direct thread.
type Type string

const (
	TypeBoard Type = "BOARD"
	TypeRoom  Type = "ROOM"
	TypeDM    Type = "DM"
)

// Valid reports whether t is a known variant.
func (t Type) Valid() bool {
	return t == TypeBoard || t == TypeRoom || t == TypeDM
}

// BoardKey is the fixed key of the workspace board channel.
const BoardKey = "board"

// Channel is a chat thread within a workspace.
type Channel struct {
	ID            string     `db:"id"`
	WorkspaceID   string     `db:"workspace_id"`
	Type          Type       `db:"type"`
	Key           string     `db:"key"`
	Name          string     `db:"name"`
	IsPrivate     bool       `db:"is_private"`
	ArchivedAt    *time.Time `db:"archived_at"`
	LastMessageAt *time.Time `db:"last_message_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// Archived reports whether the channel is closed for writes.
func (c Channel) Archived() bool {
	return c.ArchivedAt != nil
}

// Open reports whether the channel may be read without a membership row:
// boards and public rooms are workspace-visible.
func (c Channel) Open() bool {
	return c.Type == TypeBoard || (c.Type == TypeRoom && !c.IsPrivate)
}

// Membership grants a user access to a private channel or DM while
// removed_at is null.
type Membership struct {
	ChannelID string     `db:"channel_id"`
	UserID    string     `db:"user_id"`
	JoinedAt  time.Time  `db:"joined_at"`
	RemovedAt *time.Time `db:"removed_at"`
}

// DMKey derives the dedupe key for a direct channel from the unordered user
// pair. The sort makes the key order-independent, which is what enforces
// "at most one live DM per pair" at the storage layer.
func DMKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return "dm:" + strings.Join(pair, ":")
}

// Patch carries partial channel updates. Nil fields are left untouched.
type Patch struct {
	Name      *string
	IsPrivate *bool
	Archive   bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.IsPrivate == nil && !p.Archive
}
