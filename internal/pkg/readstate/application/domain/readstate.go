package readstate

import "time"

// State is a per-user read pointer on a thread (chat channel or comms
// conversation). AnchorID references the last message/event the user has
// read; nil means explicitly cleared or never set.
type State struct {
	ThreadID   string     `db:"thread_id"`
	UserID     string     `db:"user_id"`
	AnchorID   *string    `db:"anchor_id"`
	LastReadAt *time.Time `db:"last_read_at"`
}
