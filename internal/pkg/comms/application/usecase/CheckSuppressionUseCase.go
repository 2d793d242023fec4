package usecase

import (
	"context"
	"fmt"
	"strings"

	"commscore/internal/pkg/apperror"
	"commscore/internal/pkg/comms/persistence/repository/port"
)

// CheckSuppressionUseCase answers whether outbound SMS to a number is
// blocked for a workspace. Outbound senders call this before every send.
type CheckSuppressionUseCase struct {
	Repo port.SuppressionRepository
}

func NewCheckSuppressionUseCase(repo port.SuppressionRepository) *CheckSuppressionUseCase {
	return &CheckSuppressionUseCase{Repo: repo}
}

func (uc *CheckSuppressionUseCase) Execute(ctx context.Context, workspaceID string, e164 string) (bool, error) {
	e164 = strings.TrimSpace(e164)
	if e164 == "" || !strings.HasPrefix(e164, "+") {
		return false, apperror.Validation("e164", "must be an E.164 number")
	}
	suppressed, err := uc.Repo.IsSuppressed(ctx, workspaceID, e164)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return suppressed, nil
}
