package usecase

import (
	"context"
	"errors"
	"testing"

	"commscore/internal/pkg/apperror"
	channel "commscore/internal/pkg/channel/application/domain"
	"commscore/internal/pkg/channel/persistence/repository/adapter"
)

func TestRequireHidesPrivateChannelFromNonMembers(t *testing.T) {
	store := adapter.NewMemChannelStore()
	owner := ident("w1", "u1")
	ch, err := NewCreateChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeRoom, Name: "secret", IsPrivate: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stranger := ident("w1", "u9")
	_, err = NewChannelAccessUseCase(store.Scoped(stranger), stranger).Require(context.Background(), ch.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("stranger err = %v, want ErrNotFound", err)
	}

	if _, err := NewChannelAccessUseCase(store.Scoped(owner), owner).Require(context.Background(), ch.ID); err != nil {
		t.Fatalf("member err = %v", err)
	}
}

func TestRequireAllowsPublicRoomWithoutMembership(t *testing.T) {
	store := adapter.NewMemChannelStore()
	owner := ident("w1", "u1")
	ch, err := NewCreateChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeRoom, Name: "open",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reader := ident("w1", "u9")
	if _, err := NewChannelAccessUseCase(store.Scoped(reader), reader).Require(context.Background(), ch.ID); err != nil {
		t.Fatalf("public room err = %v", err)
	}
}

func TestRequireHidesChannelAcrossWorkspaces(t *testing.T) {
	store := adapter.NewMemChannelStore()
	owner := ident("w1", "u1")
	ch, err := NewCreateChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeRoom, Name: "open",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A public room in another workspace must still read as absent.
	outsider := ident("w2", "u1")
	_, err = NewChannelAccessUseCase(store.Scoped(outsider), outsider).Require(context.Background(), ch.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("cross-workspace err = %v, want ErrNotFound", err)
	}
}

func TestRequireWritableRejectsArchivedChannel(t *testing.T) {
	store := adapter.NewMemChannelStore()
	owner := ident("w1", "u1")
	ch, err := NewCreateChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeRoom, Name: "old",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	admin := elevated("w1", "u1")
	if _, err := NewPatchChannelUseCase(store.Scoped(admin), admin).Execute(context.Background(), ch.ID, channel.Patch{Archive: true}); err != nil {
		t.Fatalf("archive: %v", err)
	}

	access := NewChannelAccessUseCase(store.Scoped(owner), owner)
	if _, err := access.Require(context.Background(), ch.ID); err != nil {
		t.Fatalf("archived channel should stay readable: %v", err)
	}
	if _, err := access.RequireWritable(context.Background(), ch.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("writable err = %v, want ErrConflict", err)
	}
}
