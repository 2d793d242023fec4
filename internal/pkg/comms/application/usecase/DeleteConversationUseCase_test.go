package usecase

import (
	"context"
	"errors"
	"testing"

	eventadapter "commscore/internal/infrastructure/events/adapter"
	"commscore/internal/pkg/apperror"
	comms "commscore/internal/pkg/comms/application/domain"
	"commscore/internal/pkg/comms/persistence/repository/adapter"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

func TestDeleteConversationCascades(t *testing.T) {
	store := adapter.NewMemCommsStore()
	store.RegisterNumber(comms.PhoneNumber{
		ID: "pn1", WorkspaceID: "w1", E164: "+15550001111", AssignedToUserID: "u1",
	})
	ingest := NewIngestInboundSmsUseCase(store, store, store, fakeEntitlement{granted: true}, eventadapter.NopPublisher{})
	seeded, err := ingest.Execute(context.Background(), InboundSmsInput{
		MessageSid: "SM1", From: "+15551234567", To: "+15550001111", Body: "hello",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	owner := store.ScopedConversations(tenancy.Identity{UserID: "u1", WorkspaceID: "w1"})
	stranger := store.ScopedConversations(tenancy.Identity{UserID: "u2", WorkspaceID: "w1"})

	// Same workspace, different user: user-private scope hides the row.
	err = NewDeleteConversationUseCase(stranger, nil, tenancy.Identity{UserID: "u2", WorkspaceID: "w1"}).Execute(context.Background(), seeded.ConversationID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("stranger delete err = %v, want ErrNotFound", err)
	}

	if err := NewDeleteConversationUseCase(owner, nil, tenancy.Identity{UserID: "u1", WorkspaceID: "w1"}).Execute(context.Background(), seeded.ConversationID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, found, _ := store.FindSmsBySid(context.Background(), "SM1"); found {
		t.Fatal("sms row survived cascade")
	}
	if events := store.Events(seeded.ConversationID); len(events) != 0 {
		t.Fatalf("events survived cascade: %d", len(events))
	}
}
