package api

import "github.com/gin-gonic/gin"

type Handlers struct {
	Orders        *OrderHandler
	Messages      *MessageHandler
	Templates     *TemplateHandler
	Settings      *SettingsHandler
	Notifications *NotificationHandler
}

// Register mounts the dashboard API on g.
func Register(g *gin.RouterGroup, h Handlers) {
	g.GET("/orders", h.Orders.ListOrders)
	g.GET("/orders/:id", h.Orders.GetOrder)
	g.POST("/orders/:id/status", h.Orders.UpdateStatus)
	g.PUT("/orders/:id/status", h.Orders.UpdateStatus)

	g.POST("/message", h.Messages.SendMessage)

	g.GET("/templates", h.Templates.ListTemplates)
	g.POST("/templates", h.Templates.SaveTemplate)
	g.POST("/templates/preview", h.Templates.Preview)
	g.GET("/templates/:status", h.Templates.GetTemplate)
	g.DELETE("/templates/:status", h.Templates.DeleteTemplate)

	g.GET("/settings", h.Settings.GetSettings)
	g.PUT("/settings/woocommerce", h.Settings.UpdateWooCommerce)
	g.PUT("/settings/pushflow", h.Settings.UpdatePushflow)
	g.PUT("/settings/store", h.Settings.UpdateStore)
	g.POST("/settings/woocommerce/test", h.Settings.TestWooCommerce)
	g.POST("/settings/pushflow/test", h.Settings.TestPushflow)

	g.GET("/notifications", h.Notifications.ListNotifications)
}
