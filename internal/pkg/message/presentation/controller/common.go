package controller

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	channelusecase "commscore/internal/pkg/channel/application/usecase"
	channeladapter "commscore/internal/pkg/channel/persistence/repository/adapter"
	message "commscore/internal/pkg/message/application/domain"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
)

const requestTimeout = 3 * time.Second

// channelGate builds the access-check primitive every message operation
// goes through.
func channelGate(pool *pgxpool.Pool, scope tenancy.Identity) *channelusecase.ChannelAccessUseCase {
	repo := channeladapter.NewPgChannelRepository(pool, scope)
	return channelusecase.NewChannelAccessUseCase(repo, scope)
}

func messageJSON(m message.Message) gin.H {
	return gin.H{
		"id":           m.ID,
		"channelId":    m.ChannelID,
		"authorUserId": m.AuthorUserID,
		"body":         m.Body,
		"type":         m.Type,
		"parentId":     m.ParentID,
		"deletedAt":    m.DeletedAt,
		"isVisible":    m.IsVisible,
		"createdAt":    m.CreatedAt,
		"updatedAt":    m.UpdatedAt,
	}
}
