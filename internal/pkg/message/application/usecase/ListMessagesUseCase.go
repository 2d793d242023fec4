package usecase

import (
	"context"
	"fmt"

	message "commscore/internal/pkg/message/application/domain"
	repository "commscore/internal/pkg/message/persistence/repository/port"
	"commscore/internal/pkg/pagination"
)

type ListMessagesInput struct {
	ChannelID string
	Limit     int
	Cursor    *pagination.Cursor
	Forward   bool // ascending, for scrolling from older context toward the present
}

type ListMessagesResult struct {
	Messages   []message.Message
	NextCursor *pagination.Cursor
}

// ListMessagesUseCase pages through a channel's visible messages.
type ListMessagesUseCase struct {
	Repo repository.MessageRepository
	Gate ChannelGate
}

func NewListMessagesUseCase(repo repository.MessageRepository, gate ChannelGate) *ListMessagesUseCase {
	return &ListMessagesUseCase{Repo: repo, Gate: gate}
}

func (uc *ListMessagesUseCase) Execute(ctx context.Context, in ListMessagesInput) (ListMessagesResult, error) {
	if _, err := uc.Gate.Require(ctx, in.ChannelID); err != nil {
		return ListMessagesResult{}, err
	}
	limit := pagination.ClampLimit(in.Limit)
	rows, err := uc.Repo.List(ctx, in.ChannelID, limit, in.Cursor, in.Forward)
	if err != nil {
		return ListMessagesResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	items, next := pagination.TrimPage(rows, limit, func(m message.Message) pagination.Cursor {
		return pagination.Cursor{SortKey: m.CreatedAt, ID: m.ID}
	})
	return ListMessagesResult{Messages: items, NextCursor: next}, nil
}
