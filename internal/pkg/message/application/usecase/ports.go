package usecase

import (
	"context"

	channel "commscore/internal/pkg/channel/application/domain"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

// ChannelGate is the slice of the channel component the message pipeline
// needs: the access-check primitive. Satisfied by channel's
// ChannelAccessUseCase.
type ChannelGate interface {
	Require(ctx context.Context, channelID string) (channel.Channel, error)
	RequireWritable(ctx context.Context, channelID string) (channel.Channel, error)
}

// MembershipChecker validates mention candidates against live channel
// membership. Satisfied by the channel repository.
type MembershipChecker interface {
	IsMember(ctx context.Context, channelID, userID string) (bool, error)
}

// WorkspaceMemberChecker validates mention candidates in open channels,
// where there are no membership rows and anyone in the workspace may be
// mentioned. Satisfied by tenancy's MembershipRepository.
type WorkspaceMemberChecker interface {
	FindRole(ctx context.Context, workspaceID, userID string) (tenancy.Role, bool, error)
}
