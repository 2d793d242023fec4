package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"commscore/internal/pkg/channel/application/usecase"
	"commscore/internal/pkg/channel/persistence/repository/adapter"
	"commscore/internal/pkg/httpx"
	"commscore/internal/pkg/tenancy/presentation/middleware"
)

// ChannelMembersController adds and removes room members. DM membership
// is fixed at creation, which the use case enforces.
type ChannelMembersController struct {
	Pool *pgxpool.Pool
}

func NewChannelMembersController(pool *pgxpool.Pool) *ChannelMembersController {
	return &ChannelMembersController{Pool: pool}
}

func (h *ChannelMembersController) HandleAdd() gin.HandlerFunc {
	return h.handle(func(ctx context.Context, uc *usecase.ManageMembersUseCase, channelID, userID string) error {
		return uc.Add(ctx, channelID, userID)
	}, http.StatusCreated)
}

func (h *ChannelMembersController) HandleRemove() gin.HandlerFunc {
	return h.handle(func(ctx context.Context, uc *usecase.ManageMembersUseCase, channelID, userID string) error {
		return uc.Remove(ctx, channelID, userID)
	}, http.StatusOK)
}

func (h *ChannelMembersController) handle(op func(context.Context, *usecase.ManageMembersUseCase, string, string) error, status int) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		repo := adapter.NewPgChannelRepository(h.Pool, scope)
		uc := usecase.NewManageMembersUseCase(repo, scope)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		if err := op(ctx, uc, c.Param("channelId"), c.Param("userId")); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, status, gin.H{})
	}
}
