package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	channel "commscore/internal/pkg/channel/application/domain"
	"commscore/internal/pkg/channel/application/usecase"
	"commscore/internal/pkg/channel/persistence/repository/adapter"
	"commscore/internal/pkg/httpx"
	"commscore/internal/pkg/tenancy/presentation/middleware"
)

type PatchChannelController struct {
	Pool *pgxpool.Pool
}

func NewPatchChannelController(pool *pgxpool.Pool) *PatchChannelController {
	return &PatchChannelController{Pool: pool}
}

type patchChannelRequest struct {
	Name      *string `json:"name"`
	IsPrivate *bool   `json:"isPrivate"`
	Archive   bool    `json:"archive"`
}

func (h *PatchChannelController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		var req patchChannelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		repo := adapter.NewPgChannelRepository(h.Pool, scope)
		uc := usecase.NewPatchChannelUseCase(repo, scope)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		updated, err := uc.Execute(ctx, c.Param("channelId"), channel.Patch{
			Name:      req.Name,
			IsPrivate: req.IsPrivate,
			Archive:   req.Archive,
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"channel": channelJSON(updated)})
	}
}
