package usecase

import (
	"context"
	"errors"
	"testing"

	"commscore/internal/pkg/apperror"
	channel "commscore/internal/pkg/channel/application/domain"
	"commscore/internal/pkg/channel/persistence/repository/adapter"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

func ident(workspaceID, userID string) tenancy.Identity {
	return tenancy.Identity{UserID: userID, WorkspaceID: workspaceID, Role: tenancy.RoleMember}
}

func elevated(workspaceID, userID string) tenancy.Identity {
	return tenancy.Identity{UserID: userID, WorkspaceID: workspaceID, Role: tenancy.RoleAdmin}
}

func TestCreateRoomAddsCreatorAsMember(t *testing.T) {
	store := adapter.NewMemChannelStore()
	scope := ident("w1", "u1")
	uc := NewCreateChannelUseCase(store.Scoped(scope), scope)

	ch, err := uc.Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeRoom, Name: "general", IsPrivate: true, MemberIDs: []string{"u2"},
	})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	ids, err := store.Scoped(scope).MemberIDs(context.Background(), ch.ID)
	if err != nil {
		t.Fatalf("member ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "u1" || ids[1] != "u2" {
		t.Fatalf("members = %v, want [u1 u2]", ids)
	}
}

func TestCreateRoomRejectsBlankName(t *testing.T) {
	store := adapter.NewMemChannelStore()
	scope := ident("w1", "u1")
	uc := NewCreateChannelUseCase(store.Scoped(scope), scope)

	_, err := uc.Execute(context.Background(), CreateChannelInput{Type: channel.TypeRoom, Name: "   "})
	if !apperror.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateDMIsIdempotentPerPair(t *testing.T) {
	store := adapter.NewMemChannelStore()
	scope := ident("w1", "u1")
	uc := NewCreateChannelUseCase(store.Scoped(scope), scope)

	first, err := uc.Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeDM, MemberIDs: []string{"u2"},
	})
	if err != nil {
		t.Fatalf("first DM: %v", err)
	}
	if first.Type != channel.TypeDM || !first.IsPrivate {
		t.Fatalf("DM = %+v, want private DM", first)
	}

	// Same pair seen from the other side resolves to the same channel.
	otherScope := ident("w1", "u2")
	otherUC := NewCreateChannelUseCase(store.Scoped(otherScope), otherScope)
	second, err := otherUC.Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeDM, MemberIDs: []string{"u1"},
	})
	if err != nil {
		t.Fatalf("second DM: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second DM id = %s, want %s", second.ID, first.ID)
	}
}

func TestCreateDMRequiresExactlyTwoMembers(t *testing.T) {
	store := adapter.NewMemChannelStore()
	scope := ident("w1", "u1")
	uc := NewCreateChannelUseCase(store.Scoped(scope), scope)

	// MemberIDs plus the caller makes three.
	_, err := uc.Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeDM, MemberIDs: []string{"u2", "u3"},
	})
	if !apperror.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}

	// A self-DM collapses to one member after dedupe.
	_, err = uc.Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeDM, MemberIDs: []string{"u1"},
	})
	if !apperror.IsValidation(err) {
		t.Fatalf("self DM err = %v, want validation error", err)
	}
}

func TestCreateRoomDuplicateKeyConflicts(t *testing.T) {
	store := adapter.NewMemChannelStore()
	scope := ident("w1", "u1")
	uc := NewCreateChannelUseCase(store.Scoped(scope), scope)

	if _, err := uc.Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeRoom, Name: "first", Key: "room:launch",
	}); err != nil {
		t.Fatalf("first room: %v", err)
	}
	_, err := uc.Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeRoom, Name: "second", Key: "room:launch",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	// Another workspace may reuse the key.
	other := ident("w2", "u1")
	if _, err := NewCreateChannelUseCase(store.Scoped(other), other).Execute(context.Background(), CreateChannelInput{
		Type: channel.TypeRoom, Name: "theirs", Key: "room:launch",
	}); err != nil {
		t.Fatalf("cross-workspace key reuse: %v", err)
	}
}

func TestCreateRejectsBoardType(t *testing.T) {
	store := adapter.NewMemChannelStore()
	scope := ident("w1", "u1")
	uc := NewCreateChannelUseCase(store.Scoped(scope), scope)

	_, err := uc.Execute(context.Background(), CreateChannelInput{Type: channel.TypeBoard, Name: "Board"})
	if !apperror.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestEnsureBoardReturnsOneChannelPerWorkspace(t *testing.T) {
	store := adapter.NewMemChannelStore()
	scope := ident("w1", "u1")
	uc := NewEnsureBoardUseCase(store.Scoped(scope))

	first, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("ensure board: %v", err)
	}
	second, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("ensure board again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("board ids differ: %s vs %s", first.ID, second.ID)
	}

	other := ident("w2", "u9")
	otherBoard, err := NewEnsureBoardUseCase(store.Scoped(other)).Execute(context.Background())
	if err != nil {
		t.Fatalf("ensure board for w2: %v", err)
	}
	if otherBoard.ID == first.ID {
		t.Fatalf("workspaces share a board channel")
	}
}
