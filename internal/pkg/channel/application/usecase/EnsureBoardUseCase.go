package usecase

import (
	"context"
	"fmt"

	channel "commscore/internal/pkg/channel/application/domain"
	repository "commscore/internal/pkg/channel/persistence/repository/port"
)

// EnsureBoardUseCase returns the workspace's singleton board channel,
// creating it lazily on first access. The upsert underneath makes concurrent
// first calls converge on one row.
type EnsureBoardUseCase struct {
	Repo repository.ChannelRepository
}

func NewEnsureBoardUseCase(repo repository.ChannelRepository) *EnsureBoardUseCase {
	return &EnsureBoardUseCase{Repo: repo}
}

func (uc *EnsureBoardUseCase) Execute(ctx context.Context) (channel.Channel, error) {
	ch, err := uc.Repo.EnsureBoard(ctx)
	if err != nil {
		return channel.Channel{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return ch, nil
}
