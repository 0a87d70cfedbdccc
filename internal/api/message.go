package api

import (
	"context"
	"net/http"
	"strings"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/sms"

	"github.com/gin-gonic/gin"
)

// Deliverer makes one journaled SMS delivery.
type Deliverer interface {
	Deliver(ctx context.Context, d *sms.Delivery) (sms.Receipt, error)
}

type MessageHandler struct {
	Deliverer Deliverer
}

func NewMessageHandler(d Deliverer) *MessageHandler {
	return &MessageHandler{Deliverer: d}
}

type SendMessageRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

// SendMessage sends a free-form SMS and relays the provider response.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" || strings.TrimSpace(req.Message) == "" {
		respondError(c, apperrors.InvalidInput("phoneNumber and message are required"))
		return
	}
	if err := sms.ValidatePhone(phone); err != nil {
		respondError(c, err)
		return
	}

	delivery := sms.Delivery{Phone: phone, Message: req.Message}
	receipt, err := h.Deliverer.Deliver(c.Request.Context(), &delivery)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("X-Attempt-Id", delivery.AttemptID)
	c.Data(http.StatusOK, "application/json; charset=utf-8", receipt.Response)
}
