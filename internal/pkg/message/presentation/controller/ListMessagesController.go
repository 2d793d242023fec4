package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"commscore/internal/pkg/httpx"
	"commscore/internal/pkg/message/application/usecase"
	"commscore/internal/pkg/message/persistence/repository/adapter"
	"commscore/internal/pkg/tenancy/presentation/middleware"
)

type ListMessagesController struct {
	Pool *pgxpool.Pool
}

func NewListMessagesController(pool *pgxpool.Pool) *ListMessagesController {
	return &ListMessagesController{Pool: pool}
}

func (h *ListMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		limit, cursor, err := httpx.PageQuery(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}

		repo := adapter.NewPgMessageRepository(h.Pool, scope)
		uc := usecase.NewListMessagesUseCase(repo, channelGate(h.Pool, scope))

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		result, err := uc.Execute(ctx, usecase.ListMessagesInput{
			ChannelID: c.Param("channelId"),
			Limit:     limit,
			Cursor:    cursor,
			Forward:   c.Query("direction") == "forward",
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}

		items := make([]gin.H, 0, len(result.Messages))
		for _, m := range result.Messages {
			items = append(items, messageJSON(m))
		}
		httpx.OK(c, http.StatusOK, gin.H{
			"messages":   items,
			"nextCursor": httpx.EncodeCursor(result.NextCursor),
		})
	}
}
