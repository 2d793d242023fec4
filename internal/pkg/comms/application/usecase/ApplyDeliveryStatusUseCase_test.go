package usecase

import (
	"context"
	"testing"

	eventadapter "commscore/internal/infrastructure/events/adapter"
	comms "commscore/internal/pkg/comms/application/domain"
	"commscore/internal/pkg/comms/persistence/repository/adapter"
)

func newDeliveryFixture(t *testing.T) (*ApplyDeliveryStatusUseCase, *adapter.MemCommsStore, string) {
	t.Helper()
	store := adapter.NewMemCommsStore()
	store.RegisterNumber(comms.PhoneNumber{
		ID: "pn1", WorkspaceID: "w1", E164: "+15550001111", AssignedToUserID: "u1",
	})
	ingest := NewIngestInboundSmsUseCase(store, store, store, fakeEntitlement{granted: true}, eventadapter.NopPublisher{})
	result, err := ingest.Execute(context.Background(), InboundSmsInput{
		MessageSid: "SM1", From: "+15551234567", To: "+15550001111", Body: "hello",
	})
	if err != nil {
		t.Fatalf("seed inbound: %v", err)
	}
	uc := NewApplyDeliveryStatusUseCase(store, fakeEntitlement{granted: true}, eventadapter.NopPublisher{})
	return uc, store, result.ConversationID
}

func TestDeliveryStatusUnknownSidDropped(t *testing.T) {
	uc, _, _ := newDeliveryFixture(t)
	result, err := uc.Execute(context.Background(), DeliveryStatusInput{MessageSid: "SM-none", Status: "delivered"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Handled {
		t.Fatalf("result = %+v, want dropped", result)
	}
}

func TestDeliveryStatusAppendsOnceOnRetry(t *testing.T) {
	uc, store, convID := newDeliveryFixture(t)
	ctx := context.Background()
	input := DeliveryStatusInput{MessageSid: "SM1", Status: "delivered"}

	first, err := uc.Execute(ctx, input)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if !first.EventAppended {
		t.Fatalf("first = %+v, want event appended", first)
	}

	second, err := uc.Execute(ctx, input)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.EventAppended {
		t.Fatalf("second = %+v, want retry skipped", second)
	}

	deliveries := 0
	for _, event := range store.Events(convID) {
		if event.Type == comms.EventDeliveryUpdate {
			deliveries++
		}
	}
	if deliveries != 1 {
		t.Fatalf("delivery events = %d, want 1", deliveries)
	}
}

func TestDeliveryStatusTransitionAppendsAgain(t *testing.T) {
	uc, store, convID := newDeliveryFixture(t)
	ctx := context.Background()

	if _, err := uc.Execute(ctx, DeliveryStatusInput{MessageSid: "SM1", Status: "sent"}); err != nil {
		t.Fatalf("sent: %v", err)
	}
	result, err := uc.Execute(ctx, DeliveryStatusInput{MessageSid: "SM1", Status: "delivered"})
	if err != nil {
		t.Fatalf("delivered: %v", err)
	}
	if !result.EventAppended {
		t.Fatalf("result = %+v, want new event", result)
	}

	msg, _, _ := store.FindSmsBySid(ctx, "SM1")
	if msg.Status != "delivered" {
		t.Fatalf("status = %q, want delivered", msg.Status)
	}

	deliveries := 0
	for _, event := range store.Events(convID) {
		if event.Type == comms.EventDeliveryUpdate {
			deliveries++
		}
	}
	if deliveries != 2 {
		t.Fatalf("delivery events = %d, want 2", deliveries)
	}
}

func TestDeliveryStatusRevokedEntitlementDropped(t *testing.T) {
	_, store, _ := newDeliveryFixture(t)
	uc := NewApplyDeliveryStatusUseCase(store, fakeEntitlement{granted: false}, eventadapter.NopPublisher{})
	result, err := uc.Execute(context.Background(), DeliveryStatusInput{MessageSid: "SM1", Status: "delivered"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Handled {
		t.Fatalf("result = %+v, want dropped", result)
	}
	msg, _, _ := store.FindSmsBySid(context.Background(), "SM1")
	if msg.Status == "delivered" {
		t.Fatal("status written for revoked workspace")
	}
}
