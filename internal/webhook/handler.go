package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/models"
	"woo-notify/internal/service"
	"woo-notify/internal/woocommerce"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	HeaderSignature = "X-WC-Webhook-Signature"
	HeaderTopic     = "X-WC-Webhook-Topic"

	maxBody = 1 << 20
)

// Importer applies an order pushed by the store.
type Importer interface {
	ApplyWebhookOrder(ctx context.Context, order models.Order) (service.WebhookResult, error)
}

type Handler struct {
	Secret   string
	Importer Importer
	Log      *zap.Logger
}

func NewHandler(secret string, importer Importer, log *zap.Logger) *Handler {
	return &Handler{
		Secret:   secret,
		Importer: importer,
		Log:      log,
	}
}

// Sign returns the signature the store sends for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (h *Handler) verify(body []byte, signature string) bool {
	want := Sign(h.Secret, body)
	return hmac.Equal([]byte(want), []byte(signature))
}

// HandleOrder receives order.created and order.updated deliveries.
func (h *Handler) HandleOrder(c *gin.Context) {
	if h.Secret == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "WooCommerce webhook secret is not configured", "kind": apperrors.KindNotConfigured})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	topic := c.GetHeader(HeaderTopic)
	// Webhook creation pings with a form body and no topic.
	if topic == "" && strings.HasPrefix(string(body), "webhook_id=") {
		h.Log.Info("WooCommerce webhook ping received")
		c.JSON(http.StatusOK, gin.H{"status": "pong"})
		return
	}

	if !h.verify(body, c.GetHeader(HeaderSignature)) {
		h.Log.Warn("Webhook signature mismatch", zap.String("topic", topic))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
		return
	}

	if !strings.HasPrefix(topic, "order.") || topic == "order.deleted" {
		h.Log.Debug("Webhook topic ignored", zap.String("topic", topic))
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "topic": topic})
		return
	}

	var payload woocommerce.Order
	if err := json.Unmarshal(body, &payload); err != nil {
		h.Log.Warn("Error decoding webhook order", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order payload"})
		return
	}

	result, err := h.Importer.ApplyWebhookOrder(c.Request.Context(), payload.ToModel())
	if err != nil {
		h.Log.Error("Error importing webhook order", zap.Int64("order_id", payload.ID), zap.Error(err))
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error(), "kind": apperrors.KindOf(err)})
		return
	}
	c.JSON(http.StatusOK, result)
}
