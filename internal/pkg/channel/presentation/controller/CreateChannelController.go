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

type CreateChannelController struct {
	Pool *pgxpool.Pool
}

func NewCreateChannelController(pool *pgxpool.Pool) *CreateChannelController {
	return &CreateChannelController{Pool: pool}
}

type createChannelRequest struct {
	Type      string   `json:"type" binding:"required"`
	Name      string   `json:"name"`
	Key       string   `json:"key"`
	IsPrivate bool     `json:"isPrivate"`
	MemberIDs []string `json:"memberIds"`
}

func (h *CreateChannelController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		var req createChannelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		repo := adapter.NewPgChannelRepository(h.Pool, scope)
		uc := usecase.NewCreateChannelUseCase(repo, scope)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		created, err := uc.Execute(ctx, usecase.CreateChannelInput{
			Type:      channel.Type(req.Type),
			Name:      req.Name,
			Key:       req.Key,
			IsPrivate: req.IsPrivate,
			MemberIDs: req.MemberIDs,
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusCreated, gin.H{"channel": channelJSON(created)})
	}
}
