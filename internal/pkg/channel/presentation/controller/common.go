package controller

import (
	"time"

	"github.com/gin-gonic/gin"

	channel "commscore/internal/pkg/channel/application/domain"
)

const requestTimeout = 3 * time.Second

func channelJSON(ch channel.Channel) gin.H {
	return gin.H{
		"id":            ch.ID,
		"type":          ch.Type,
		"key":           ch.Key,
		"name":          ch.Name,
		"isPrivate":     ch.IsPrivate,
		"archivedAt":    ch.ArchivedAt,
		"lastMessageAt": ch.LastMessageAt,
		"createdAt":     ch.CreatedAt,
		"updatedAt":     ch.UpdatedAt,
	}
}
