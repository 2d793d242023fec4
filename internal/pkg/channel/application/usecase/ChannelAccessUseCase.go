package usecase

import (
	"context"
	"fmt"

	"commscore/internal/pkg/apperror"
	channel "commscore/internal/pkg/channel/application/domain"
	repository "commscore/internal/pkg/channel/persistence/repository/port"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

// ChannelAccessUseCase is the access-check primitive reused by every
// message, reaction and read-state operation.
type ChannelAccessUseCase struct {
	Repo  repository.ChannelRepository
	Scope tenancy.Identity
}

func NewChannelAccessUseCase(repo repository.ChannelRepository, scope tenancy.Identity) *ChannelAccessUseCase {
	return &ChannelAccessUseCase{Repo: repo, Scope: scope}
}

// Require returns the channel when the caller may read it. A channel the
// caller must not see returns ErrNotFound, never ErrForbidden: a 403 would
// leak the channel's existence across tenants.
func (uc *ChannelAccessUseCase) Require(ctx context.Context, channelID string) (channel.Channel, error) {
	ch, ok, err := uc.Repo.FindByID(ctx, channelID)
	if err != nil {
		return channel.Channel{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return channel.Channel{}, apperror.ErrNotFound
	}
	if ch.Open() {
		return ch, nil
	}
	member, err := uc.Repo.IsMember(ctx, channelID, uc.Scope.UserID)
	if err != nil {
		return channel.Channel{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !member {
		return channel.Channel{}, apperror.ErrNotFound
	}
	return ch, nil
}

// RequireWritable additionally rejects archived channels, which stay
// readable but are closed for new writes.
func (uc *ChannelAccessUseCase) RequireWritable(ctx context.Context, channelID string) (channel.Channel, error) {
	ch, err := uc.Require(ctx, channelID)
	if err != nil {
		return channel.Channel{}, err
	}
	if ch.Archived() {
		return channel.Channel{}, fmt.Errorf("%w: channel is archived", apperror.ErrConflict)
	}
	return ch, nil
}
