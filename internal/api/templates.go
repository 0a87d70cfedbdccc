package api

import (
	"net/http"
	"strings"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/models"
	"woo-notify/internal/templates"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	Store    *templates.Store
	Renderer *templates.Renderer
}

func NewTemplateHandler(store *templates.Store, renderer *templates.Renderer) *TemplateHandler {
	return &TemplateHandler{Store: store, Renderer: renderer}
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	list, err := h.Store.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	status := models.OrderStatus(c.Param("status"))
	tmpl, ok, err := h.Store.Get(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		respondError(c, apperrors.NotFound("no template for status %q", status))
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

// SaveTemplateRequest accepts the template body as either text or content.
type SaveTemplateRequest struct {
	Name    string `json:"name"`
	Text    string `json:"text"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

func (h *TemplateHandler) SaveTemplate(c *gin.Context) {
	var req SaveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}
	content := req.Text
	if strings.TrimSpace(content) == "" {
		content = req.Content
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(content) == "" || strings.TrimSpace(req.Status) == "" {
		respondError(c, apperrors.InvalidInput("name, text, and status are required"))
		return
	}

	saved, err := h.Store.Upsert(c.Request.Context(), models.OrderStatus(strings.TrimSpace(req.Status)), models.MessageTemplate{
		Name:    req.Name,
		Content: content,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	status := models.OrderStatus(c.Param("status"))
	if err := h.Store.Remove(c.Request.Context(), status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Template deleted"})
}

type PreviewRequest struct {
	Content string `json:"content"`
}

// Preview renders content against the sample order.
func (h *TemplateHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"preview":      h.Renderer.Render(req.Content, templates.SampleOrder),
		"placeholders": templates.Placeholders,
	})
}
