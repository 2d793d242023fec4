package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"commscore/internal/pkg/readstate/presentation/controller"
)

// RegisterChannelRoutes binds the chat read-state endpoints.
func RegisterChannelRoutes(g *gin.RouterGroup, pool *pgxpool.Pool) {
	ctl := controller.NewChannelReadStateController(pool)
	g.GET("/channels/:channelId/read-state", ctl.HandleGet())
	g.PUT("/channels/:channelId/read-state", ctl.HandleMark())
}

// RegisterConversationRoutes binds the comms read-state endpoints. These
// sit behind the comms capability check.
func RegisterConversationRoutes(g *gin.RouterGroup, pool *pgxpool.Pool) {
	ctl := controller.NewConversationReadStateController(pool)
	g.GET("/conversations/:conversationId/read-state", ctl.HandleGet())
	g.PUT("/conversations/:conversationId/read-state", ctl.HandleMark())
}
