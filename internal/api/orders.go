package api

import (
	"net/http"
	"strconv"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/models"
	"woo-notify/internal/orders"
	"woo-notify/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	Orders *service.Orders
}

func NewOrderHandler(svc *service.Orders) *OrderHandler {
	return &OrderHandler{Orders: svc}
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	filter := orders.Filter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	result, err := h.Orders.ListOrders(c.Request.Context(), page, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := orderID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	order, err := h.Orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := orderID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}
	if req.Status == "" {
		respondError(c, apperrors.InvalidInput("status is required"))
		return
	}

	change, err := h.Orders.ChangeStatus(c.Request.Context(), id, models.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, change)
}

func orderID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("invalid order id %q", c.Param("id"))
	}
	return id, nil
}
