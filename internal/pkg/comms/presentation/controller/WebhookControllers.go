package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"commscore/internal/pkg/comms/application/usecase"
)

// Webhook controllers always answer 200: providers retry indefinitely on
// any other status, and a dropped webhook is recorded in the result, not
// the response code. Payloads are form-encoded in the provider's style.

type InboundSmsWebhookController struct {
	UC *usecase.IngestInboundSmsUseCase
}

func NewInboundSmsWebhookController(uc *usecase.IngestInboundSmsUseCase) *InboundSmsWebhookController {
	return &InboundSmsWebhookController{UC: uc}
}

func (h *InboundSmsWebhookController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		result, err := h.UC.Execute(ctx, usecase.InboundSmsInput{
			MessageSid: c.PostForm("MessageSid"),
			From:       c.PostForm("From"),
			To:         c.PostForm("To"),
			Body:       c.PostForm("Body"),
		})
		if err != nil {
			// Storage failure: a non-2xx makes the provider retry later.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"handled": result.Handled})
	}
}

type DeliveryStatusWebhookController struct {
	UC *usecase.ApplyDeliveryStatusUseCase
}

func NewDeliveryStatusWebhookController(uc *usecase.ApplyDeliveryStatusUseCase) *DeliveryStatusWebhookController {
	return &DeliveryStatusWebhookController{UC: uc}
}

func (h *DeliveryStatusWebhookController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var errorCode *string
		if raw := c.PostForm("ErrorCode"); raw != "" {
			errorCode = &raw
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		result, err := h.UC.Execute(ctx, usecase.DeliveryStatusInput{
			MessageSid: c.PostForm("MessageSid"),
			Status:     c.PostForm("MessageStatus"),
			ErrorCode:  errorCode,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"handled": result.Handled})
	}
}

type CallWebhookController struct {
	UC *usecase.IngestCallEventUseCase
}

func NewCallWebhookController(uc *usecase.IngestCallEventUseCase) *CallWebhookController {
	return &CallWebhookController{UC: uc}
}

func (h *CallWebhookController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var recordingURL *string
		if raw := c.PostForm("RecordingUrl"); raw != "" {
			recordingURL = &raw
		}
		duration, _ := strconv.Atoi(c.PostForm("RecordingDuration"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		result, err := h.UC.Execute(ctx, usecase.CallEventInput{
			CallSid:      c.PostForm("CallSid"),
			From:         c.PostForm("From"),
			To:           c.PostForm("To"),
			Status:       c.PostForm("CallStatus"),
			RecordingURL: recordingURL,
			DurationSecs: duration,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"handled": result.Handled})
	}
}
