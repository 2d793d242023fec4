package port

import (
	"context"
	"time"
)

// Envelope is the wire form of a published domain event. Correlation ids
// carry whatever references downstream consumers need (conversation id,
// message id, provider sid).
type Envelope struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	WorkspaceID string            `json:"workspaceId"`
	OccurredAt  time.Time         `json:"occurredAt"`
	Correlation map[string]string `json:"correlation,omitempty"`
	Payload     map[string]any    `json:"payload,omitempty"`
}

// Publisher delivers domain events to an external sink. Publishing is
// fire-and-forget from the caller's perspective: a failed publish must never
// fail the primary write.
type Publisher interface {
	Publish(ctx context.Context, e Envelope) error
	Close() error
}
