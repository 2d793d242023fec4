package usecase

import (
	"context"
	"fmt"

	comms "commscore/internal/pkg/comms/application/domain"
	"commscore/internal/pkg/comms/persistence/repository/port"
	"commscore/internal/pkg/pagination"
)

type ConversationPage struct {
	Conversations []comms.Conversation
	NextCursor    *pagination.Cursor
}

type ListConversationsUseCase struct {
	Repo port.ConversationRepository
}

func NewListConversationsUseCase(repo port.ConversationRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, limit int, cursor *pagination.Cursor) (ConversationPage, error) {
	limit = pagination.ClampLimit(limit)
	rows, err := uc.Repo.List(ctx, limit, cursor)
	if err != nil {
		return ConversationPage{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	page, next := pagination.TrimPage(rows, limit, func(conv comms.Conversation) pagination.Cursor {
		return pagination.Cursor{SortKey: conv.UpdatedAt, ID: conv.ID}
	})
	return ConversationPage{Conversations: page, NextCursor: next}, nil
}
