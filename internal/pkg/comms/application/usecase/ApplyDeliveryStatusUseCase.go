package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	eventport "commscore/internal/infrastructure/events/port"
	comms "commscore/internal/pkg/comms/application/domain"
	"commscore/internal/pkg/comms/persistence/repository/port"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

// DeliveryStatusInput carries the provider webhook fields for a status
// transition on a previously sent or received message.
type DeliveryStatusInput struct {
	MessageSid string
	Status     string
	ErrorCode  *string
}

// DeliveryStatusResult reports the outcome. EventAppended is false when
// the status matched the latest recorded update (provider retry).
type DeliveryStatusResult struct {
	Handled       bool
	Reason        string
	EventAppended bool
	MessageID     string
}

type ApplyDeliveryStatusUseCase struct {
	Ledger      port.LedgerRepository
	Entitlement EntitlementChecker
	Publisher   eventport.Publisher
}

func NewApplyDeliveryStatusUseCase(ledger port.LedgerRepository, entitlement EntitlementChecker, publisher eventport.Publisher) *ApplyDeliveryStatusUseCase {
	return &ApplyDeliveryStatusUseCase{Ledger: ledger, Entitlement: entitlement, Publisher: publisher}
}

func (uc *ApplyDeliveryStatusUseCase) Execute(ctx context.Context, input DeliveryStatusInput) (DeliveryStatusResult, error) {
	if input.MessageSid == "" || input.Status == "" {
		return DeliveryStatusResult{Reason: "missing provider fields"}, nil
	}

	msg, found, err := uc.Ledger.FindSmsBySid(ctx, input.MessageSid)
	if err != nil {
		return DeliveryStatusResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !found {
		// Providers retry indefinitely on non-2xx; an unknown sid is
		// accepted and dropped.
		return DeliveryStatusResult{Reason: "unknown sid"}, nil
	}

	granted, err := uc.Entitlement.Check(ctx, msg.WorkspaceID, tenancy.CapabilityComms)
	if err != nil {
		return DeliveryStatusResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !granted {
		return DeliveryStatusResult{Reason: "entitlement revoked"}, nil
	}

	if err := uc.Ledger.UpdateSmsStatus(ctx, msg.ID, input.Status, input.ErrorCode); err != nil {
		return DeliveryStatusResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	latest, recorded, err := uc.Ledger.LatestDeliveryStatus(ctx, msg.ConversationID, msg.ID)
	if err != nil {
		return DeliveryStatusResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if recorded && latest == input.Status {
		return DeliveryStatusResult{Handled: true, MessageID: msg.ID}, nil
	}

	payload := map[string]any{"messageId": msg.ID, "status": input.Status}
	if input.ErrorCode != nil {
		payload["errorCode"] = *input.ErrorCode
	}
	if _, err := uc.Ledger.AppendEvent(ctx, comms.CommEvent{
		ID:             uuid.NewString(),
		WorkspaceID:    msg.WorkspaceID,
		ConversationID: msg.ConversationID,
		Type:           comms.EventDeliveryUpdate,
		OccurredAt:     time.Now(),
		Payload:        payload,
	}); err != nil {
		return DeliveryStatusResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Publisher != nil {
		err := uc.Publisher.Publish(ctx, eventport.Envelope{
			Type:        "comms.delivery_update",
			WorkspaceID: msg.WorkspaceID,
			Correlation: map[string]string{"conversationId": msg.ConversationID, "messageId": msg.ID},
			Payload:     map[string]any{"status": input.Status},
		})
		if err != nil {
			log.Printf("comms: publish delivery_update: %v", err)
		}
	}

	return DeliveryStatusResult{Handled: true, EventAppended: true, MessageID: msg.ID}, nil
}
