package usecase

import (
	"context"
	"fmt"

	channel "commscore/internal/pkg/channel/application/domain"
	repository "commscore/internal/pkg/channel/persistence/repository/port"
	"commscore/internal/pkg/pagination"
)

type ListChannelsInput struct {
	IncludeArchived bool
	Limit           int
	Cursor          *pagination.Cursor
}

type ListChannelsResult struct {
	Channels   []channel.Channel
	NextCursor *pagination.Cursor
}

// ListChannelsUseCase returns the channels visible to the caller: public
// rooms and the board, plus private channels and DMs where the caller holds
// a live membership. Visibility is computed in the repository query so it
// composes with pagination.
type ListChannelsUseCase struct {
	Repo repository.ChannelRepository
}

func NewListChannelsUseCase(repo repository.ChannelRepository) *ListChannelsUseCase {
	return &ListChannelsUseCase{Repo: repo}
}

func (uc *ListChannelsUseCase) Execute(ctx context.Context, in ListChannelsInput) (ListChannelsResult, error) {
	limit := pagination.ClampLimit(in.Limit)
	rows, err := uc.Repo.ListVisible(ctx, in.IncludeArchived, limit, in.Cursor)
	if err != nil {
		return ListChannelsResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	items, next := pagination.TrimPage(rows, limit, func(c channel.Channel) pagination.Cursor {
		return pagination.Cursor{SortKey: c.UpdatedAt, ID: c.ID}
	})
	return ListChannelsResult{Channels: items, NextCursor: next}, nil
}
