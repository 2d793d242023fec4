package usecase

import (
	"context"
	"fmt"

	"commscore/internal/pkg/apperror"
	comms "commscore/internal/pkg/comms/application/domain"
	"commscore/internal/pkg/comms/persistence/repository/port"
	"commscore/internal/pkg/pagination"
)

type EventPage struct {
	Events     []comms.CommEvent
	NextCursor *pagination.Cursor
}

type ListEventsUseCase struct {
	Repo port.ConversationRepository
}

func NewListEventsUseCase(repo port.ConversationRepository) *ListEventsUseCase {
	return &ListEventsUseCase{Repo: repo}
}

func (uc *ListEventsUseCase) Execute(ctx context.Context, conversationID string, limit int, cursor *pagination.Cursor) (EventPage, error) {
	_, found, err := uc.Repo.FindByID(ctx, conversationID)
	if err != nil {
		return EventPage{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !found {
		return EventPage{}, apperror.ErrNotFound
	}
	limit = pagination.ClampLimit(limit)
	rows, err := uc.Repo.ListEvents(ctx, conversationID, limit, cursor)
	if err != nil {
		return EventPage{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	page, next := pagination.TrimPage(rows, limit, func(event comms.CommEvent) pagination.Cursor {
		return pagination.Cursor{SortKey: event.OccurredAt, ID: event.ID}
	})
	return EventPage{Events: page, NextCursor: next}, nil
}
