package task

import (
	"context"
	"encoding/json"
	"log"
	"time"

	eventport "commscore/internal/infrastructure/events/port"
	qport "commscore/internal/infrastructure/queue/port"
)

// AuditTaskType records destructive user actions off the request path.
const AuditTaskType = "audit:emit"

type AuditPayload struct {
	WorkspaceID string `json:"workspaceId"`
	ActorUserID string `json:"actorUserId"`
	Action      string `json:"action"`
	SubjectID   string `json:"subjectId"`
}

// RegisterAuditTask binds the audit task to the AMQP sink. A malformed
// payload is dropped rather than retried; it can never become valid.
func RegisterAuditTask(srv qport.Server, publisher eventport.Publisher) {
	srv.Register(AuditTaskType, func(ctx context.Context, t qport.Task) error {
		var payload AuditPayload
		if err := json.Unmarshal(t.Payload, &payload); err != nil {
			log.Printf("audit: malformed payload: %v", err)
			return nil
		}
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return publisher.Publish(ctx, eventport.Envelope{
			Type:        "audit.event",
			WorkspaceID: payload.WorkspaceID,
			Correlation: map[string]string{"subjectId": payload.SubjectID},
			Payload: map[string]any{
				"actorUserId": payload.ActorUserID,
				"action":      payload.Action,
			},
		})
	})
}
