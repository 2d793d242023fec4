package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"commscore/internal/pkg/channel/presentation/controller"
)

// RegisterRoutes binds the channel endpoints under the given group. One
// controller per endpoint.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool) {
	boardCtl := controller.NewEnsureBoardController(pool)
	createCtl := controller.NewCreateChannelController(pool)
	listCtl := controller.NewListChannelsController(pool)
	patchCtl := controller.NewPatchChannelController(pool)
	membersCtl := controller.NewChannelMembersController(pool)

	// POST /api/v1/channels/board -> lazily create and return the board
	g.POST("/channels/board", boardCtl.Handle())

	// POST /api/v1/channels -> create a room or DM
	g.POST("/channels", createCtl.Handle())

	// GET /api/v1/channels -> channels visible to the caller
	g.GET("/channels", listCtl.Handle())

	// PATCH /api/v1/channels/:channelId -> rename, toggle privacy, archive
	g.PATCH("/channels/:channelId", patchCtl.Handle())

	// membership management for rooms
	g.POST("/channels/:channelId/members/:userId", membersCtl.HandleAdd())
	g.DELETE("/channels/:channelId/members/:userId", membersCtl.HandleRemove())
}
