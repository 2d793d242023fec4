package message

import (
	"regexp"
	"strings"
	"time"
)

// Type discriminates user text from system-generated notices.
type Type string

const (
	TypeText   Type = "TEXT"
	TypeSystem Type = "SYSTEM"
)

// MaxBodyRunes caps message bodies. Enforced before any write.
const MaxBodyRunes = 10000

// Message is a chat message. Deletion is soft: deleted messages stay
// addressable by id for thread integrity but are hidden from listings.
type Message struct {
	ID           string     `db:"id"`
	ChannelID    string     `db:"channel_id"`
	AuthorUserID string     `db:"author_user_id"`
	Body         string     `db:"body"`
	Type         Type       `db:"type"`
	ParentID     *string    `db:"parent_id"`
	ClientNonce  *string    `db:"client_nonce"`
	DeletedAt    *time.Time `db:"deleted_at"`
	IsVisible    bool       `db:"is_visible"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// Deleted reports whether the message has been soft-deleted.
func (m Message) Deleted() bool {
	return m.DeletedAt != nil
}

// Reaction is unique per (message, user, emoji); toggling either creates or
// removes it atomically.
type Reaction struct {
	MessageID string    `db:"message_id"`
	UserID    string    `db:"user_id"`
	Emoji     string    `db:"emoji"`
	CreatedAt time.Time `db:"created_at"`
}

// Mention records that a message referenced a user. Derived at creation
// time, immutable thereafter.
type Mention struct {
	WorkspaceID     string    `db:"workspace_id"`
	MessageID       string    `db:"message_id"`
	MentionedUserID string    `db:"mentioned_user_id"`
	CreatedAt       time.Time `db:"created_at"`
}

var mentionToken = regexp.MustCompile(`<@([0-9a-fA-F-]{36})>`)

// ExtractMentionIDs collects user ids referenced by <@id> tokens in a body.
func ExtractMentionIDs(body string) []string {
	matches := mentionToken.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.ToLower(m[1]))
	}
	return ids
}
