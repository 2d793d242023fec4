package controller

import (
	"time"

	"github.com/gin-gonic/gin"

	comms "commscore/internal/pkg/comms/application/domain"
)

const requestTimeout = 3 * time.Second

func conversationJSON(conv comms.Conversation) gin.H {
	return gin.H{
		"id":             conv.ID,
		"contactId":      conv.ContactID,
		"listingId":      conv.ListingID,
		"phoneNumberId":  conv.PhoneNumberID,
		"otherPartyE164": conv.OtherPartyE164,
		"displayName":    conv.DisplayName,
		"lastMessageAt":  conv.LastMessageAt,
		"lastInboundAt":  conv.LastInboundAt,
		"lastOutboundAt": conv.LastOutboundAt,
		"createdAt":      conv.CreatedAt,
		"updatedAt":      conv.UpdatedAt,
	}
}

func eventJSON(event comms.CommEvent) gin.H {
	return gin.H{
		"id":             event.ID,
		"conversationId": event.ConversationID,
		"type":           event.Type,
		"occurredAt":     event.OccurredAt,
		"payload":        event.Payload,
	}
}
