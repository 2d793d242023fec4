package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	qport "commscore/internal/infrastructure/queue/port"
	"commscore/internal/pkg/message/presentation/controller"
)

// RegisterRoutes binds the message and reaction endpoints.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, queue qport.Client) {
	createCtl := controller.NewCreateMessageController(pool, queue)
	listCtl := controller.NewListMessagesController(pool)
	editCtl := controller.NewEditMessageController(pool)
	deleteCtl := controller.NewDeleteMessageController(pool)
	reactCtl := controller.NewToggleReactionController(pool)

	// POST /api/v1/channels/:channelId/messages -> idempotent send
	g.POST("/channels/:channelId/messages", createCtl.Handle())

	// GET /api/v1/channels/:channelId/messages -> paginated history
	g.GET("/channels/:channelId/messages", listCtl.Handle())

	// PATCH /api/v1/messages/:messageId -> edit body
	g.PATCH("/messages/:messageId", editCtl.Handle())

	// DELETE /api/v1/messages/:messageId -> soft delete
	g.DELETE("/messages/:messageId", deleteCtl.Handle())

	// POST /api/v1/messages/:messageId/reactions -> toggle
	g.POST("/messages/:messageId/reactions", reactCtl.Handle())
}
