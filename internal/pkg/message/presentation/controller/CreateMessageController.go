package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	qport "commscore/internal/infrastructure/queue/port"
	channeladapter "commscore/internal/pkg/channel/persistence/repository/adapter"
	"commscore/internal/pkg/httpx"
	"commscore/internal/pkg/message/application/usecase"
	"commscore/internal/pkg/message/persistence/repository/adapter"
	tenancyadapter "commscore/internal/pkg/tenancy/persistence/repository/adapter"
	"commscore/internal/pkg/tenancy/presentation/middleware"
)

type CreateMessageController struct {
	Pool  *pgxpool.Pool
	Queue qport.Client
}

func NewCreateMessageController(pool *pgxpool.Pool, queue qport.Client) *CreateMessageController {
	return &CreateMessageController{Pool: pool, Queue: queue}
}

type createMessageRequest struct {
	Body             string   `json:"body" binding:"required"`
	ClientNonce      string   `json:"clientNonce"`
	ParentID         *string  `json:"parentId"`
	MentionedUserIDs []string `json:"mentionedUserIds"`
}

func (h *CreateMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		var req createMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		repo := adapter.NewPgMessageRepository(h.Pool, scope)
		members := channeladapter.NewPgChannelRepository(h.Pool, scope)
		workspaceMembers := tenancyadapter.NewPgMembershipRepository(h.Pool)
		uc := usecase.NewCreateMessageUseCase(repo, channelGate(h.Pool, scope), members, workspaceMembers, h.Queue, scope)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		created, err := uc.Execute(ctx, usecase.CreateMessageInput{
			ChannelID:        c.Param("channelId"),
			Body:             req.Body,
			ClientNonce:      req.ClientNonce,
			ParentID:         req.ParentID,
			MentionedUserIDs: req.MentionedUserIDs,
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusCreated, gin.H{"message": messageJSON(created)})
	}
}
