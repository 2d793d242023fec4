package usecase

import (
	"context"
	"errors"
	"testing"

	"commscore/internal/pkg/apperror"
	channelusecase "commscore/internal/pkg/channel/application/usecase"
	message "commscore/internal/pkg/message/application/domain"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

func (f *messageFixture) list(scope tenancy.Identity) *ListMessagesUseCase {
	return NewListMessagesUseCase(
		f.messages.Scoped(scope),
		channelusecase.NewChannelAccessUseCase(f.channels.Scoped(scope), scope),
	)
}

func bodies(ms []message.Message) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Body
	}
	return out
}

func TestListMessagesWalksBackwardThroughHistory(t *testing.T) {
	f := newMessageFixture(t)
	author := ident("w1", "u1", tenancy.RoleMember)
	for _, body := range []string{"m1", "m2", "m3"} {
		f.seedMessage(t, author, body)
	}

	uc := f.list(author)
	first, err := uc.Execute(context.Background(), ListMessagesInput{ChannelID: f.channel.ID, Limit: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if got := bodies(first.Messages); len(got) != 2 || got[0] != "m3" || got[1] != "m2" {
		t.Fatalf("first page = %v, want [m3 m2]", got)
	}
	if first.NextCursor == nil {
		t.Fatalf("first page has no cursor")
	}

	second, err := uc.Execute(context.Background(), ListMessagesInput{
		ChannelID: f.channel.ID, Limit: 2, Cursor: first.NextCursor,
	})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if got := bodies(second.Messages); len(got) != 1 || got[0] != "m1" {
		t.Fatalf("second page = %v, want [m1]", got)
	}
	if second.NextCursor != nil {
		t.Fatalf("second page cursor = %v, want nil", second.NextCursor)
	}
}

func TestListMessagesForwardIsAscending(t *testing.T) {
	f := newMessageFixture(t)
	author := ident("w1", "u1", tenancy.RoleMember)
	for _, body := range []string{"m1", "m2", "m3"} {
		f.seedMessage(t, author, body)
	}

	res, err := f.list(author).Execute(context.Background(), ListMessagesInput{
		ChannelID: f.channel.ID, Limit: 10, Forward: true,
	})
	if err != nil {
		t.Fatalf("list forward: %v", err)
	}
	if got := bodies(res.Messages); len(got) != 3 || got[0] != "m1" || got[2] != "m3" {
		t.Fatalf("forward page = %v, want [m1 m2 m3]", got)
	}
}

func TestListMessagesHidesDeleted(t *testing.T) {
	f := newMessageFixture(t)
	author := ident("w1", "u1", tenancy.RoleMember)
	f.seedMessage(t, author, "keep")
	m := f.seedMessage(t, author, "drop")
	if err := f.del(author).Execute(context.Background(), m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	res, err := f.list(author).Execute(context.Background(), ListMessagesInput{ChannelID: f.channel.ID, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := bodies(res.Messages); len(got) != 1 || got[0] != "keep" {
		t.Fatalf("page = %v, want [keep]", got)
	}
}

func TestListMessagesInPrivateChannelNeedsMembership(t *testing.T) {
	f := newMessageFixture(t)
	author := ident("w1", "u1", tenancy.RoleMember)
	f.seedMessage(t, author, "secret")

	stranger := ident("w1", "u9", tenancy.RoleMember)
	_, err := f.list(stranger).Execute(context.Background(), ListMessagesInput{ChannelID: f.channel.ID, Limit: 10})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
