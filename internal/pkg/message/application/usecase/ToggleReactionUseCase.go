package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"commscore/internal/pkg/apperror"
	repository "commscore/internal/pkg/message/persistence/repository/port"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

const maxEmojiRunes = 32

// ToggleReactionUseCase flips the caller's reaction on a message. The
// repository performs the toggle atomically so two racing double-clicks
// converge instead of erroring.
type ToggleReactionUseCase struct {
	Repo  repository.MessageRepository
	Gate  ChannelGate
	Scope tenancy.Identity
}

func NewToggleReactionUseCase(repo repository.MessageRepository, gate ChannelGate, scope tenancy.Identity) *ToggleReactionUseCase {
	return &ToggleReactionUseCase{Repo: repo, Gate: gate, Scope: scope}
}

// Execute returns whether the reaction is present after the toggle.
func (uc *ToggleReactionUseCase) Execute(ctx context.Context, messageID, emoji string) (bool, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" || utf8.RuneCountInString(emoji) > maxEmojiRunes {
		return false, apperror.Validation("emoji", "emoji is required and must be short")
	}
	m, ok, err := uc.Repo.FindByID(ctx, messageID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok || m.Deleted() {
		return false, apperror.ErrNotFound
	}
	if _, err := uc.Gate.Require(ctx, m.ChannelID); err != nil {
		return false, err
	}
	added, err := uc.Repo.ToggleReaction(ctx, messageID, uc.Scope.UserID, emoji)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return added, nil
}
