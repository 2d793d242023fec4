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

// CallEventInput carries the provider webhook fields for a completed,
// missed, or voicemail call leg.
type CallEventInput struct {
	CallSid      string
	From         string
	To           string
	Status       string
	RecordingURL *string
	DurationSecs int
}

type CallEventResult struct {
	Handled        bool
	Reason         string
	ConversationID string
	CallID         string
}

type IngestCallEventUseCase struct {
	Directory   port.PhoneNumberDirectory
	Ledger      port.LedgerRepository
	Entitlement EntitlementChecker
	Publisher   eventport.Publisher
}

func NewIngestCallEventUseCase(directory port.PhoneNumberDirectory, ledger port.LedgerRepository, entitlement EntitlementChecker, publisher eventport.Publisher) *IngestCallEventUseCase {
	return &IngestCallEventUseCase{Directory: directory, Ledger: ledger, Entitlement: entitlement, Publisher: publisher}
}

func (uc *IngestCallEventUseCase) Execute(ctx context.Context, input CallEventInput) (CallEventResult, error) {
	if input.CallSid == "" || input.From == "" || input.To == "" {
		return CallEventResult{Reason: "missing provider fields"}, nil
	}

	number, found, err := uc.Directory.FindByE164(ctx, input.To)
	if err != nil {
		return CallEventResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !found {
		return CallEventResult{Reason: "unknown receiving number"}, nil
	}

	granted, err := uc.Entitlement.Check(ctx, number.WorkspaceID, tenancy.CapabilityComms)
	if err != nil {
		return CallEventResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !granted {
		return CallEventResult{Reason: "entitlement revoked"}, nil
	}

	conv, _, err := uc.Ledger.UpsertConversation(ctx, comms.Conversation{
		ID:               uuid.NewString(),
		WorkspaceID:      number.WorkspaceID,
		PhoneNumberID:    number.ID,
		AssignedToUserID: number.AssignedToUserID,
		OtherPartyE164:   input.From,
		DisplayName:      input.From,
		ThreadKey:        comms.ThreadKey(number.ID, input.From),
	})
	if err != nil {
		return CallEventResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	now := time.Now()
	call, inserted, err := uc.Ledger.InsertCallBySid(ctx, comms.Call{
		ID:             uuid.NewString(),
		WorkspaceID:    number.WorkspaceID,
		ConversationID: conv.ID,
		PhoneNumberID:  number.ID,
		Direction:      comms.DirectionInbound,
		Status:         input.Status,
		RecordingURL:   input.RecordingURL,
		DurationSecs:   input.DurationSecs,
		ProviderSid:    input.CallSid,
		OccurredAt:     now,
	})
	if err != nil {
		return CallEventResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !inserted {
		return CallEventResult{Reason: "duplicate sid", ConversationID: conv.ID, CallID: call.ID}, nil
	}

	eventType := comms.EventMissedCall
	if input.RecordingURL != nil {
		eventType = comms.EventVoicemail
	}
	payload := map[string]any{"callId": call.ID, "from": input.From, "status": input.Status}
	if input.RecordingURL != nil {
		payload["recordingUrl"] = *input.RecordingURL
		payload["durationSecs"] = input.DurationSecs
	}
	if _, err := uc.Ledger.AppendEvent(ctx, comms.CommEvent{
		ID:             uuid.NewString(),
		WorkspaceID:    number.WorkspaceID,
		ConversationID: conv.ID,
		Type:           eventType,
		OccurredAt:     call.OccurredAt,
		Payload:        payload,
	}); err != nil {
		return CallEventResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := uc.Ledger.TouchConversation(ctx, conv.ID, comms.DirectionInbound, call.OccurredAt); err != nil {
		log.Printf("comms: touch conversation %s: %v", conv.ID, err)
	}

	if uc.Publisher != nil {
		err := uc.Publisher.Publish(ctx, eventport.Envelope{
			Type:        "comms.call_event",
			WorkspaceID: number.WorkspaceID,
			Correlation: map[string]string{"conversationId": conv.ID, "callId": call.ID},
			Payload:     map[string]any{"type": string(eventType), "from": input.From},
		})
		if err != nil {
			log.Printf("comms: publish call_event: %v", err)
		}
	}

	return CallEventResult{Handled: true, ConversationID: conv.ID, CallID: call.ID}, nil
}
