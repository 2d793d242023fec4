package usecase

import (
	"context"
	"fmt"

	"commscore/internal/pkg/apperror"
	channel "commscore/internal/pkg/channel/application/domain"
	repository "commscore/internal/pkg/channel/persistence/repository/port"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

// ManageMembersUseCase adds and removes room memberships. DM membership is
// fixed at creation and never mutated.
type ManageMembersUseCase struct {
	Repo   repository.ChannelRepository
	Access *ChannelAccessUseCase
}

func NewManageMembersUseCase(repo repository.ChannelRepository, scope tenancy.Identity) *ManageMembersUseCase {
	return &ManageMembersUseCase{
		Repo:   repo,
		Access: NewChannelAccessUseCase(repo, scope),
	}
}

func (uc *ManageMembersUseCase) Add(ctx context.Context, channelID, userID string) error {
	ch, err := uc.Access.RequireWritable(ctx, channelID)
	if err != nil {
		return err
	}
	if ch.Type == channel.TypeDM {
		return fmt.Errorf("%w: DM membership is fixed", apperror.ErrConflict)
	}
	if userID == "" {
		return apperror.Validation("userId", "user id is required")
	}
	if err := uc.Repo.AddMember(ctx, channelID, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (uc *ManageMembersUseCase) Remove(ctx context.Context, channelID, userID string) error {
	ch, err := uc.Access.RequireWritable(ctx, channelID)
	if err != nil {
		return err
	}
	if ch.Type == channel.TypeDM {
		return fmt.Errorf("%w: DM membership is fixed", apperror.ErrConflict)
	}
	if err := uc.Repo.RemoveMember(ctx, channelID, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
