package task

import (
	"context"
	"encoding/json"
	"time"

	eventport "commscore/internal/infrastructure/events/port"
	qport "commscore/internal/infrastructure/queue/port"
	"commscore/internal/pkg/message/application/usecase"
)

// RegisterMentionFanoutTask binds the mention fan-out handler to the worker.
// The handler forwards a mention event per message to the event sink;
// notification delivery itself belongs to downstream consumers.
func RegisterMentionFanoutTask(srv qport.Server, publisher eventport.Publisher) {
	srv.Register(usecase.MentionFanoutTaskType, func(ctx context.Context, t qport.Task) error {
		var p usecase.MentionFanoutPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// Malformed payload will never parse; do not retry.
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		return publisher.Publish(ctx, eventport.Envelope{
			Type:        "chat.mention",
			WorkspaceID: p.WorkspaceID,
			Correlation: map[string]string{
				"channelId": p.ChannelID,
				"messageId": p.MessageID,
			},
			Payload: map[string]any{
				"authorUserId":     p.AuthorUserID,
				"mentionedUserIds": p.MentionedUserIDs,
			},
		})
	})
}
