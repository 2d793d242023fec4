package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	qport "commscore/internal/infrastructure/queue/port"
	"commscore/internal/pkg/apperror"
	"commscore/internal/pkg/comms/application/task"
	"commscore/internal/pkg/comms/persistence/repository/port"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

type DeleteConversationUseCase struct {
	Repo  port.ConversationRepository
	Queue qport.Client // optional; audit trail is best-effort
	Scope tenancy.Identity
}

func NewDeleteConversationUseCase(repo port.ConversationRepository, queue qport.Client, scope tenancy.Identity) *DeleteConversationUseCase {
	return &DeleteConversationUseCase{Repo: repo, Queue: queue, Scope: scope}
}

// Execute removes the conversation and all child rows in one
// transaction. A conversation assigned to another user reports NotFound.
func (uc *DeleteConversationUseCase) Execute(ctx context.Context, conversationID string) error {
	deleted, err := uc.Repo.DeleteCascade(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !deleted {
		return apperror.ErrNotFound
	}

	if uc.Queue != nil {
		payload, _ := json.Marshal(task.AuditPayload{
			WorkspaceID: uc.Scope.WorkspaceID,
			ActorUserID: uc.Scope.UserID,
			Action:      "conversation.delete",
			SubjectID:   conversationID,
		})
		if _, err := uc.Queue.Enqueue(ctx, qport.Task{Type: task.AuditTaskType, Payload: payload}); err != nil {
			log.Printf("comms: enqueue audit for %s: %v", conversationID, err)
		}
	}
	return nil
}
