package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"commscore/internal/pkg/apperror"
	message "commscore/internal/pkg/message/application/domain"
	repository "commscore/internal/pkg/message/persistence/repository/port"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

// EditMessageUseCase rewrites a message body. Only the author, or an
// elevated workspace role, may edit.
type EditMessageUseCase struct {
	Repo  repository.MessageRepository
	Gate  ChannelGate
	Scope tenancy.Identity
}

func NewEditMessageUseCase(repo repository.MessageRepository, gate ChannelGate, scope tenancy.Identity) *EditMessageUseCase {
	return &EditMessageUseCase{Repo: repo, Gate: gate, Scope: scope}
}

func (uc *EditMessageUseCase) Execute(ctx context.Context, messageID, body string) (message.Message, error) {
	m, err := uc.load(ctx, messageID)
	if err != nil {
		return message.Message{}, err
	}
	if m.Deleted() {
		return message.Message{}, fmt.Errorf("%w: message is deleted", apperror.ErrConflict)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return message.Message{}, apperror.Validation("body", "message body is required")
	}
	if utf8.RuneCountInString(body) > message.MaxBodyRunes {
		return message.Message{}, apperror.Validation("body", fmt.Sprintf("body exceeds %d characters", message.MaxBodyRunes))
	}
	updated, err := uc.Repo.UpdateBody(ctx, messageID, body)
	if err != nil {
		return message.Message{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return updated, nil
}

// load fetches the message and applies the channel access check plus the
// author-or-elevated rule shared by edit and delete.
func (uc *EditMessageUseCase) load(ctx context.Context, messageID string) (message.Message, error) {
	m, ok, err := uc.Repo.FindByID(ctx, messageID)
	if err != nil {
		return message.Message{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return message.Message{}, apperror.ErrNotFound
	}
	if _, err := uc.Gate.Require(ctx, m.ChannelID); err != nil {
		return message.Message{}, err
	}
	if m.AuthorUserID != uc.Scope.UserID && !uc.Scope.Role.Elevated() {
		return message.Message{}, fmt.Errorf("%w: not the author", apperror.ErrForbidden)
	}
	return m, nil
}

// DeleteMessageUseCase soft-deletes a message under the same author rule.
type DeleteMessageUseCase struct {
	edit *EditMessageUseCase
	Repo repository.MessageRepository
}

func NewDeleteMessageUseCase(repo repository.MessageRepository, gate ChannelGate, scope tenancy.Identity) *DeleteMessageUseCase {
	return &DeleteMessageUseCase{
		edit: NewEditMessageUseCase(repo, gate, scope),
		Repo: repo,
	}
}

func (uc *DeleteMessageUseCase) Execute(ctx context.Context, messageID string) error {
	m, err := uc.edit.load(ctx, messageID)
	if err != nil {
		return err
	}
	if m.Deleted() {
		return nil // already deleted: idempotent
	}
	if err := uc.Repo.SoftDelete(ctx, messageID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
