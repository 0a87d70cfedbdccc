package api

import (
	"net/http"
	"strconv"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/notify"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Logs *notify.LogStore
}

func NewNotificationHandler(logs *notify.LogStore) *NotificationHandler {
	return &NotificationHandler{Logs: logs}
}

// ListNotifications returns recent delivery attempts, optionally for one
// order (?order_id=) and capped by ?limit=.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	var orderID *int64
	if raw := c.Query("order_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, apperrors.InvalidInput("invalid order_id %q", raw))
			return
		}
		orderID = &id
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	logs, err := h.Logs.Recent(c.Request.Context(), orderID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
