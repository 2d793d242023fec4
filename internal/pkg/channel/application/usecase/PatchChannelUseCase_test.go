package usecase

import (
	"context"
	"errors"
	"testing"

	"commscore/internal/pkg/apperror"
	channel "commscore/internal/pkg/channel/application/domain"
	"commscore/internal/pkg/channel/persistence/repository/adapter"
)

func strPtr(s string) *string { return &s }

func TestPatchRenamesRoom(t *testing.T) {
	store := adapter.NewMemChannelStore()
	owner := ident("w1", "u1")
	ch, err := NewCreateChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeRoom, Name: "old name",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := NewPatchChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), ch.ID, channel.Patch{
		Name: strPtr("  new name  "),
	})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if updated.Name != "new name" {
		t.Fatalf("name = %q, want %q", updated.Name, "new name")
	}
}

func TestPatchEmptyIsNoOp(t *testing.T) {
	store := adapter.NewMemChannelStore()
	owner := ident("w1", "u1")
	ch, err := NewCreateChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeRoom, Name: "room",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := NewPatchChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), ch.ID, channel.Patch{})
	if err != nil {
		t.Fatalf("empty patch: %v", err)
	}
	if !got.UpdatedAt.Equal(ch.UpdatedAt) {
		t.Fatalf("empty patch touched updated_at")
	}
}

func TestPatchArchivedChannelConflicts(t *testing.T) {
	store := adapter.NewMemChannelStore()
	owner := ident("w1", "u1")
	ch, err := NewCreateChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeRoom, Name: "room",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	admin := elevated("w1", "u1")
	uc := NewPatchChannelUseCase(store.Scoped(admin), admin)
	if _, err := uc.Execute(context.Background(), ch.ID, channel.Patch{Archive: true}); err != nil {
		t.Fatalf("archive: %v", err)
	}
	_, err = uc.Execute(context.Background(), ch.ID, channel.Patch{Name: strPtr("renamed")})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestArchiveRequiresElevatedRole(t *testing.T) {
	store := adapter.NewMemChannelStore()
	owner := ident("w1", "u1")
	ch, err := NewCreateChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeRoom, Name: "room",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = NewPatchChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), ch.ID, channel.Patch{Archive: true})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("member archive err = %v, want ErrForbidden", err)
	}

	admin := elevated("w1", "u2")
	got, err := NewPatchChannelUseCase(store.Scoped(admin), admin).Execute(context.Background(), ch.ID, channel.Patch{Archive: true})
	if err != nil {
		t.Fatalf("admin archive: %v", err)
	}
	if !got.Archived() {
		t.Fatalf("channel = %+v, want archived", got)
	}
}

func TestPatchRejectsDMRename(t *testing.T) {
	store := adapter.NewMemChannelStore()
	owner := ident("w1", "u1")
	dm, err := NewCreateChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeDM, MemberIDs: []string{"u2"},
	})
	if err != nil {
		t.Fatalf("create DM: %v", err)
	}

	_, err = NewPatchChannelUseCase(store.Scoped(owner), owner).Execute(context.Background(), dm.ID, channel.Patch{
		Name: strPtr("pair chat"),
	})
	if !apperror.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
