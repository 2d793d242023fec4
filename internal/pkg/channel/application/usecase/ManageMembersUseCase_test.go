package usecase

import (
	"context"
	"errors"
	"testing"

	"commscore/internal/pkg/apperror"
	channel "commscore/internal/pkg/channel/application/domain"
	"commscore/internal/pkg/channel/persistence/repository/adapter"
)

func TestAddAndRemoveRoomMember(t *testing.T) {
	store := adapter.NewMemChannelStore()
	owner := ident("w1", "u1")
	ch, err := NewCreateChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeRoom, Name: "room", IsPrivate: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	uc := NewManageMembersUseCase(store.Scoped(owner), owner)
	if err := uc.Add(context.Background(), ch.ID, "u2"); err != nil {
		t.Fatalf("add: %v", err)
	}
	ok, err := store.Scoped(owner).IsMember(context.Background(), ch.ID, "u2")
	if err != nil || !ok {
		t.Fatalf("u2 member = %v, %v; want true", ok, err)
	}

	if err := uc.Remove(context.Background(), ch.ID, "u2"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	ok, err = store.Scoped(owner).IsMember(context.Background(), ch.ID, "u2")
	if err != nil || ok {
		t.Fatalf("u2 member after remove = %v, %v; want false", ok, err)
	}
}

func TestDMManagementIsRejected(t *testing.T) {
	store := adapter.NewMemChannelStore()
	owner := ident("w1", "u1")
	dm, err := NewCreateChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeDM, MemberIDs: []string{"u2"},
	})
	if err != nil {
		t.Fatalf("create DM: %v", err)
	}

	uc := NewManageMembersUseCase(store.Scoped(owner), owner)
	if err := uc.Add(context.Background(), dm.ID, "u3"); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("add err = %v, want ErrConflict", err)
	}
	if err := uc.Remove(context.Background(), dm.ID, "u2"); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("remove err = %v, want ErrConflict", err)
	}
}

func TestAddMemberToForeignChannelReadsAsMissing(t *testing.T) {
	store := adapter.NewMemChannelStore()
	owner := ident("w1", "u1")
	ch, err := NewCreateChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeRoom, Name: "room", IsPrivate: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stranger := ident("w1", "u9")
	uc := NewManageMembersUseCase(store.Scoped(stranger), stranger)
	if err := uc.Add(context.Background(), ch.ID, "u9"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
