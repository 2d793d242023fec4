package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"commscore/internal/pkg/apperror"
	channel "commscore/internal/pkg/channel/application/domain"
	repository "commscore/internal/pkg/channel/persistence/repository/port"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

// CreateChannelInput is the tagged union for channel creation. Per-variant
// requirements are validated here, at the boundary, not deep in the pipeline.
type CreateChannelInput struct {
	Type      channel.Type
	Name      string
	Key       string
	IsPrivate bool
	MemberIDs []string
}

// CreateChannelUseCase creates ROOM and DM channels. DM creation is
// idempotent per unordered user pair: a second attempt returns the existing
// live channel instead of erroring.
type CreateChannelUseCase struct {
	Repo  repository.ChannelRepository
	Scope tenancy.Identity
}

func NewCreateChannelUseCase(repo repository.ChannelRepository, scope tenancy.Identity) *CreateChannelUseCase {
	return &CreateChannelUseCase{Repo: repo, Scope: scope}
}

func (uc *CreateChannelUseCase) Execute(ctx context.Context, in CreateChannelInput) (channel.Channel, error) {
	switch in.Type {
	case channel.TypeRoom:
		return uc.createRoom(ctx, in)
	case channel.TypeDM:
		return uc.createDM(ctx, in)
	case channel.TypeBoard:
		return channel.Channel{}, apperror.Validation("type", "board channels are created lazily, not via create")
	default:
		return channel.Channel{}, apperror.Validation("type", "unknown channel type")
	}
}

func (uc *CreateChannelUseCase) createRoom(ctx context.Context, in CreateChannelInput) (channel.Channel, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return channel.Channel{}, apperror.Validation("name", "room name is required")
	}
	key := strings.TrimSpace(in.Key)
	if key == "" {
		key = "room:" + uuid.NewString()
	}

	members := dedupe(append(in.MemberIDs, uc.Scope.UserID))
	ch, err := uc.Repo.InsertRoom(ctx, channel.Channel{
		Name:      name,
		Key:       key,
		IsPrivate: in.IsPrivate,
	}, members)
	if errors.Is(err, repository.ErrDuplicateKey) {
		return channel.Channel{}, fmt.Errorf("%w: %v", apperror.ErrConflict, err)
	}
	if err != nil {
		return channel.Channel{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return ch, nil
}

func (uc *CreateChannelUseCase) createDM(ctx context.Context, in CreateChannelInput) (channel.Channel, error) {
	members := dedupe(append(in.MemberIDs, uc.Scope.UserID))
	if len(members) != 2 {
		return channel.Channel{}, apperror.Validation("memberIds", "a DM has exactly two members")
	}
	key := channel.DMKey(members[0], members[1])
	ch, _, err := uc.Repo.UpsertDM(ctx, key, members)
	if err != nil {
		return channel.Channel{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return ch, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
