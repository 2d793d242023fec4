package retention

import (
	"os"
	"strconv"
	"time"
)

// Class identifies one entity family with its own retention window.
type Class string

const (
	ClassChatMessages  Class = "chat_messages"
	ClassCommEvents    Class = "comm_events"
	ClassSmsMessages   Class = "sms_messages"
	ClassCalls         Class = "calls"
	ClassConversations Class = "conversations"
)

// SweepOrder is child-before-parent: chat messages carry their reactions
// and mentions, conversation children go before the empty-conversation
// cleanup.
var SweepOrder = []Class{
	ClassChatMessages,
	ClassCommEvents,
	ClassSmsMessages,
	ClassCalls,
	ClassConversations,
}

const (
	defaultChatDays  = 90
	defaultCommsDays = 365
	defaultBatchSize = 500
)

// Policy holds the per-class windows and the delete batch size.
type Policy struct {
	ChatWindow  time.Duration
	CommsWindow time.Duration
	BatchSize   int
}

// PolicyFromEnv reads RETENTION_CHAT_DAYS and RETENTION_COMMS_DAYS,
// falling back to the defaults on missing or malformed values.
func PolicyFromEnv() Policy {
	return Policy{
		ChatWindow:  time.Duration(envDays("RETENTION_CHAT_DAYS", defaultChatDays)) * 24 * time.Hour,
		CommsWindow: time.Duration(envDays("RETENTION_COMMS_DAYS", defaultCommsDays)) * 24 * time.Hour,
		BatchSize:   defaultBatchSize,
	}
}

func envDays(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return fallback
	}
	return days
}

// Window returns the retention window for a class.
func (p Policy) Window(class Class) time.Duration {
	if class == ClassChatMessages {
		return p.ChatWindow
	}
	return p.CommsWindow
}

// ClassResult is the per-class sweep outcome, the only observable side
// channel of a run.
type ClassResult struct {
	Class   Class     `json:"class"`
	Cutoff  time.Time `json:"cutoff"`
	Deleted int64     `json:"deleted"`
	DryRun  bool      `json:"dryRun"`
}
