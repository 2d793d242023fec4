package usecase

import (
	"context"
	"errors"
	"testing"

	"commscore/internal/pkg/apperror"
	channelusecase "commscore/internal/pkg/channel/application/usecase"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

func (f *messageFixture) react(scope tenancy.Identity) *ToggleReactionUseCase {
	return NewToggleReactionUseCase(
		f.messages.Scoped(scope),
		channelusecase.NewChannelAccessUseCase(f.channels.Scoped(scope), scope),
		scope,
	)
}

func TestToggleReactionFlips(t *testing.T) {
	f := newMessageFixture(t)
	author := ident("w1", "u1", tenancy.RoleMember)
	m := f.seedMessage(t, author, "nice")

	peer := ident("w1", "u2", tenancy.RoleMember)
	uc := f.react(peer)

	on, err := uc.Execute(context.Background(), m.ID, "👍")
	if err != nil || !on {
		t.Fatalf("first toggle = %v, %v; want on", on, err)
	}
	off, err := uc.Execute(context.Background(), m.ID, "👍")
	if err != nil || off {
		t.Fatalf("second toggle = %v, %v; want off", off, err)
	}

	// Different emoji and different user are independent rows.
	if on, err := uc.Execute(context.Background(), m.ID, "🎉"); err != nil || !on {
		t.Fatalf("other emoji = %v, %v; want on", on, err)
	}
	if on, err := f.react(author).Execute(context.Background(), m.ID, "🎉"); err != nil || !on {
		t.Fatalf("other user = %v, %v; want on", on, err)
	}

	reactions, err := f.messages.Scoped(peer).ListReactions(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("list reactions: %v", err)
	}
	if len(reactions) != 2 {
		t.Fatalf("reactions = %d, want 2", len(reactions))
	}
}

func TestToggleReactionValidatesEmoji(t *testing.T) {
	f := newMessageFixture(t)
	author := ident("w1", "u1", tenancy.RoleMember)
	m := f.seedMessage(t, author, "hm")

	if _, err := f.react(author).Execute(context.Background(), m.ID, "  "); !apperror.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestToggleReactionOnDeletedMessage(t *testing.T) {
	f := newMessageFixture(t)
	author := ident("w1", "u1", tenancy.RoleMember)
	m := f.seedMessage(t, author, "gone")
	if err := f.del(author).Execute(context.Background(), m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := f.react(author).Execute(context.Background(), m.ID, "👍")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
