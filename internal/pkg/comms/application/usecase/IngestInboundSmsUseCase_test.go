package usecase

import (
	"context"
	"testing"

	eventadapter "commscore/internal/infrastructure/events/adapter"
	comms "commscore/internal/pkg/comms/application/domain"
	"commscore/internal/pkg/comms/persistence/repository/adapter"
)

type fakeEntitlement struct {
	granted bool
}

func (f fakeEntitlement) Check(ctx context.Context, workspaceID, capability string) (bool, error) {
	return f.granted, nil
}

func newSmsFixture(granted bool) (*IngestInboundSmsUseCase, *adapter.MemCommsStore) {
	store := adapter.NewMemCommsStore()
	store.RegisterNumber(comms.PhoneNumber{
		ID: "pn1", WorkspaceID: "w1", E164: "+15550001111", AssignedToUserID: "u1",
	})
	uc := NewIngestInboundSmsUseCase(store, store, store, fakeEntitlement{granted: granted}, eventadapter.NopPublisher{})
	return uc, store
}

func TestInboundSmsCreatesConversationAndEvent(t *testing.T) {
	uc, store := newSmsFixture(true)
	result, err := uc.Execute(context.Background(), InboundSmsInput{
		MessageSid: "SM1", From: "+15551234567", To: "+15550001111", Body: "hello there",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.Handled {
		t.Fatalf("result = %+v, want handled", result)
	}
	events := store.Events(result.ConversationID)
	if len(events) != 1 || events[0].Type != comms.EventInboundSms {
		t.Fatalf("events = %+v, want one INBOUND_SMS", events)
	}
}

func TestInboundSmsDuplicateSidIsNoOp(t *testing.T) {
	uc, store := newSmsFixture(true)
	input := InboundSmsInput{MessageSid: "SM1", From: "+15551234567", To: "+15550001111", Body: "hi"}
	first, err := uc.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := uc.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.Handled {
		t.Fatalf("second = %+v, want dropped re-delivery", second)
	}
	if second.MessageID != first.MessageID {
		t.Fatalf("message id %s != %s", second.MessageID, first.MessageID)
	}
	if events := store.Events(first.ConversationID); len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
}

func TestInboundStopThenStart(t *testing.T) {
	uc, store := newSmsFixture(true)
	ctx := context.Background()

	result, err := uc.Execute(ctx, InboundSmsInput{
		MessageSid: "SM1", From: "+15551234567", To: "+15550001111", Body: "STOP",
	})
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if result.Keyword != comms.KeywordStop {
		t.Fatalf("keyword = %v, want stop", result.Keyword)
	}
	sup, ok := store.Suppression("w1", "+15551234567")
	if !ok || sup.OptedOutAt == nil {
		t.Fatalf("suppression = %+v ok=%v, want opted out", sup, ok)
	}

	if _, err := uc.Execute(ctx, InboundSmsInput{
		MessageSid: "SM2", From: "+15551234567", To: "+15550001111", Body: "start",
	}); err != nil {
		t.Fatalf("start: %v", err)
	}
	sup, _ = store.Suppression("w1", "+15551234567")
	if sup.OptedOutAt != nil {
		t.Fatalf("suppression = %+v, want cleared", sup)
	}
}

func TestInboundHelpLeavesSuppressionUntouched(t *testing.T) {
	uc, store := newSmsFixture(true)
	if _, err := uc.Execute(context.Background(), InboundSmsInput{
		MessageSid: "SM1", From: "+15551234567", To: "+15550001111", Body: "HELP",
	}); err != nil {
		t.Fatalf("help: %v", err)
	}
	if _, ok := store.Suppression("w1", "+15551234567"); ok {
		t.Fatal("suppression row created for HELP")
	}
}

func TestInboundUnknownNumberDropped(t *testing.T) {
	uc, _ := newSmsFixture(true)
	result, err := uc.Execute(context.Background(), InboundSmsInput{
		MessageSid: "SM1", From: "+15551234567", To: "+19990000000", Body: "hello",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Handled {
		t.Fatalf("result = %+v, want dropped", result)
	}
}

func TestInboundRevokedEntitlementDropped(t *testing.T) {
	uc, store := newSmsFixture(false)
	result, err := uc.Execute(context.Background(), InboundSmsInput{
		MessageSid: "SM1", From: "+15551234567", To: "+15550001111", Body: "hello",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Handled {
		t.Fatalf("result = %+v, want dropped", result)
	}
	if _, found, _ := store.FindSmsBySid(context.Background(), "SM1"); found {
		t.Fatal("message stored for revoked workspace")
	}
}
