package usecase

import (
	"context"
	"fmt"
	"strings"

	"commscore/internal/pkg/apperror"
	channel "commscore/internal/pkg/channel/application/domain"
	repository "commscore/internal/pkg/channel/persistence/repository/port"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

// PatchChannelUseCase renames, toggles privacy on, or archives a channel.
// Archiving is terminal: there is no un-archive operation.
type PatchChannelUseCase struct {
	Repo   repository.ChannelRepository
	Access *ChannelAccessUseCase
	Scope  tenancy.Identity
}

func NewPatchChannelUseCase(repo repository.ChannelRepository, scope tenancy.Identity) *PatchChannelUseCase {
	return &PatchChannelUseCase{
		Repo:   repo,
		Access: NewChannelAccessUseCase(repo, scope),
		Scope:  scope,
	}
}

func (uc *PatchChannelUseCase) Execute(ctx context.Context, channelID string, p channel.Patch) (channel.Channel, error) {
	ch, err := uc.Access.Require(ctx, channelID)
	if err != nil {
		return channel.Channel{}, err
	}
	if p.Empty() {
		return ch, nil
	}
	if ch.Archived() {
		return channel.Channel{}, fmt.Errorf("%w: channel is archived", apperror.ErrConflict)
	}
	// Archiving is terminal, so it is reserved for elevated roles.
	if p.Archive && !uc.Scope.Role.Elevated() {
		return channel.Channel{}, fmt.Errorf("%w: archiving requires an elevated role", apperror.ErrForbidden)
	}
	if ch.Type == channel.TypeDM && (p.Name != nil || p.IsPrivate != nil) {
		return channel.Channel{}, apperror.Validation("type", "direct channels cannot be renamed or made public")
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return channel.Channel{}, apperror.Validation("name", "name cannot be empty")
		}
		p.Name = &name
	}
	updated, err := uc.Repo.Patch(ctx, channelID, p)
	if err != nil {
		return channel.Channel{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return updated, nil
}
