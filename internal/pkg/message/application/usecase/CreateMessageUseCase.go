package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	qport "commscore/internal/infrastructure/queue/port"
	"commscore/internal/pkg/apperror"
	channel "commscore/internal/pkg/channel/application/domain"
	message "commscore/internal/pkg/message/application/domain"
	repository "commscore/internal/pkg/message/persistence/repository/port"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

// MentionFanoutTaskType is the queue task emitted after a message with
// mentions lands. Handled by cmd/worker.
const MentionFanoutTaskType = "chat:mention_fanout"

// MentionFanoutPayload is the JSON payload transported via the queue.
type MentionFanoutPayload struct {
	WorkspaceID      string   `json:"workspaceId"`
	ChannelID        string   `json:"channelId"`
	MessageID        string   `json:"messageId"`
	AuthorUserID     string   `json:"authorUserId"`
	MentionedUserIDs []string `json:"mentionedUserIds"`
}

type CreateMessageInput struct {
	ChannelID        string
	Body             string
	ClientNonce      string
	ParentID         *string
	MentionedUserIDs []string
}

// CreateMessageUseCase is the idempotent message write path. A replayed
// client nonce returns the original message without re-running side
// effects, so network-level retries can never duplicate a send.
type CreateMessageUseCase struct {
	Repo             repository.MessageRepository
	Gate             ChannelGate
	Members          MembershipChecker
	WorkspaceMembers WorkspaceMemberChecker
	Queue            qport.Client // optional; mention fan-out is best-effort
	Scope            tenancy.Identity
}

func NewCreateMessageUseCase(repo repository.MessageRepository, gate ChannelGate, members MembershipChecker, workspaceMembers WorkspaceMemberChecker, queue qport.Client, scope tenancy.Identity) *CreateMessageUseCase {
	return &CreateMessageUseCase{Repo: repo, Gate: gate, Members: members, WorkspaceMembers: workspaceMembers, Queue: queue, Scope: scope}
}

func (uc *CreateMessageUseCase) Execute(ctx context.Context, in CreateMessageInput) (message.Message, error) {
	ch, err := uc.Gate.RequireWritable(ctx, in.ChannelID)
	if err != nil {
		return message.Message{}, err
	}

	body := strings.TrimSpace(in.Body)
	if body == "" {
		return message.Message{}, apperror.Validation("body", "message body is required")
	}
	if utf8.RuneCountInString(body) > message.MaxBodyRunes {
		return message.Message{}, apperror.Validation("body", fmt.Sprintf("body exceeds %d characters", message.MaxBodyRunes))
	}
	if in.ParentID != nil {
		parent, ok, err := uc.Repo.FindByID(ctx, *in.ParentID)
		if err != nil {
			return message.Message{}, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if !ok || parent.ChannelID != in.ChannelID {
			return message.Message{}, apperror.Validation("parentId", "parent message not in this channel")
		}
	}

	m := message.Message{
		ChannelID:    in.ChannelID,
		AuthorUserID: uc.Scope.UserID,
		Body:         body,
		Type:         message.TypeText,
		ParentID:     in.ParentID,
	}
	if nonce := strings.TrimSpace(in.ClientNonce); nonce != "" {
		m.ClientNonce = &nonce
	}

	saved, inserted, err := uc.Repo.UpsertByNonce(ctx, m)
	if err != nil {
		return message.Message{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !inserted {
		// Nonce replay: return the original row, side effects already ran.
		return saved, nil
	}

	mentioned := uc.resolveMentions(ctx, ch, body, in.MentionedUserIDs)
	if len(mentioned) > 0 {
		// Mentions are best-effort: a failure here must not fail the send.
		if err := uc.Repo.InsertMentions(ctx, saved.ID, mentioned); err != nil {
			log.Printf("insert mentions for message %s: %v", saved.ID, err)
			mentioned = nil
		}
	}
	if err := uc.Repo.TouchChannelActivity(ctx, in.ChannelID, saved.CreatedAt); err != nil {
		log.Printf("touch channel %s activity: %v", in.ChannelID, err)
	}

	if uc.Queue != nil && len(mentioned) > 0 {
		payload, err := json.Marshal(MentionFanoutPayload{
			WorkspaceID:      uc.Scope.WorkspaceID,
			ChannelID:        in.ChannelID,
			MessageID:        saved.ID,
			AuthorUserID:     uc.Scope.UserID,
			MentionedUserIDs: mentioned,
		})
		if err == nil {
			if _, err := uc.Queue.Enqueue(ctx, qport.Task{Type: MentionFanoutTaskType, Payload: payload},
				qport.EnqueueOption{Queue: "comms", MaxRetry: 5}); err != nil {
				log.Printf("enqueue mention fanout for message %s: %v", saved.ID, err)
			}
		}
	}
	return saved, nil
}

// resolveMentions merges caller-supplied ids with <@id> body tokens and
// keeps only users who can actually see the channel: live channel members
// for private channels and DMs, any workspace member for open channels.
// Invalid ids are dropped silently; a malformed mention never fails the
// whole write.
func (uc *CreateMessageUseCase) resolveMentions(ctx context.Context, ch channel.Channel, body string, explicit []string) []string {
	candidates := append(append([]string(nil), explicit...), message.ExtractMentionIDs(body)...)
	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, id := range candidates {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		var ok bool
		var err error
		if ch.Open() {
			_, ok, err = uc.WorkspaceMembers.FindRole(ctx, uc.Scope.WorkspaceID, id)
		} else {
			ok, err = uc.Members.IsMember(ctx, ch.ID, id)
		}
		if err != nil {
			log.Printf("validate mention %s in channel %s: %v", id, ch.ID, err)
			continue
		}
		if ok {
			out = append(out, id)
		}
	}
	return out
}
