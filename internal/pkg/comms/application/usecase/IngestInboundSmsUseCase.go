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

// InboundSmsInput carries the provider webhook fields for a received
// message. To is the workspace number, From the counterparty.
type InboundSmsInput struct {
	MessageSid string
	From       string
	To         string
	Body       string
}

// InboundSmsResult reports what ingestion did. Handled is false for
// accepted-but-dropped webhooks (unknown number, revoked entitlement,
// re-delivery); the HTTP layer returns 200 either way.
type InboundSmsResult struct {
	Handled        bool
	Reason         string
	Keyword        comms.Keyword
	ConversationID string
	MessageID      string
}

type IngestInboundSmsUseCase struct {
	Directory    port.PhoneNumberDirectory
	Ledger       port.LedgerRepository
	Suppressions port.SuppressionRepository
	Entitlement  EntitlementChecker
	Publisher    eventport.Publisher
}

func NewIngestInboundSmsUseCase(
	directory port.PhoneNumberDirectory,
	ledger port.LedgerRepository,
	suppressions port.SuppressionRepository,
	entitlement EntitlementChecker,
	publisher eventport.Publisher,
) *IngestInboundSmsUseCase {
	return &IngestInboundSmsUseCase{
		Directory:    directory,
		Ledger:       ledger,
		Suppressions: suppressions,
		Entitlement:  entitlement,
		Publisher:    publisher,
	}
}

func (uc *IngestInboundSmsUseCase) Execute(ctx context.Context, input InboundSmsInput) (InboundSmsResult, error) {
	if input.MessageSid == "" || input.From == "" || input.To == "" {
		return InboundSmsResult{Reason: "missing provider fields"}, nil
	}

	number, found, err := uc.Directory.FindByE164(ctx, input.To)
	if err != nil {
		return InboundSmsResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !found {
		return InboundSmsResult{Reason: "unknown receiving number"}, nil
	}

	granted, err := uc.Entitlement.Check(ctx, number.WorkspaceID, tenancy.CapabilityComms)
	if err != nil {
		return InboundSmsResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !granted {
		return InboundSmsResult{Reason: "entitlement revoked"}, nil
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
		return InboundSmsResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	now := time.Now()
	keyword := comms.ClassifyKeyword(input.Body)
	msg, inserted, err := uc.Ledger.InsertSmsBySid(ctx, comms.SmsMessage{
		ID:             uuid.NewString(),
		WorkspaceID:    number.WorkspaceID,
		ConversationID: conv.ID,
		PhoneNumberID:  number.ID,
		Direction:      comms.DirectionInbound,
		Body:           input.Body,
		Status:         "received",
		ProviderSid:    input.MessageSid,
		OccurredAt:     now,
	})
	if err != nil {
		return InboundSmsResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !inserted {
		// Provider re-delivery; the original write already did the work.
		return InboundSmsResult{Reason: "duplicate sid", Keyword: keyword, ConversationID: conv.ID, MessageID: msg.ID}, nil
	}

	eventType := comms.EventInboundSms
	switch keyword {
	case comms.KeywordStop:
		if err := uc.Suppressions.SetOptOut(ctx, number.WorkspaceID, input.From, now); err != nil {
			return InboundSmsResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		eventType = comms.EventOptOut
	case comms.KeywordStart:
		if err := uc.Suppressions.ClearOptOut(ctx, number.WorkspaceID, input.From); err != nil {
			return InboundSmsResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		eventType = comms.EventOptIn
	}

	if err := uc.Ledger.TouchConversation(ctx, conv.ID, comms.DirectionInbound, msg.OccurredAt); err != nil {
		log.Printf("comms: touch conversation %s: %v", conv.ID, err)
	}

	payload := map[string]any{
		"messageId": msg.ID,
		"from":      input.From,
		"body":      input.Body,
	}
	if keyword == comms.KeywordHelp {
		payload["keyword"] = "HELP"
	}
	if _, err := uc.Ledger.AppendEvent(ctx, comms.CommEvent{
		ID:             uuid.NewString(),
		WorkspaceID:    number.WorkspaceID,
		ConversationID: conv.ID,
		Type:           eventType,
		OccurredAt:     msg.OccurredAt,
		Payload:        payload,
	}); err != nil {
		return InboundSmsResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Publisher != nil {
		err := uc.Publisher.Publish(ctx, eventport.Envelope{
			Type:        "comms.inbound_sms",
			WorkspaceID: number.WorkspaceID,
			Correlation: map[string]string{"conversationId": conv.ID, "messageId": msg.ID},
			Payload:     map[string]any{"from": input.From, "keyword": keywordName(keyword)},
		})
		if err != nil {
			log.Printf("comms: publish inbound_sms: %v", err)
		}
	}

	return InboundSmsResult{Handled: true, Keyword: keyword, ConversationID: conv.ID, MessageID: msg.ID}, nil
}

func keywordName(kw comms.Keyword) string {
	switch kw {
	case comms.KeywordStop:
		return "STOP"
	case comms.KeywordStart:
		return "START"
	case comms.KeywordHelp:
		return "HELP"
	default:
		return ""
	}
}
