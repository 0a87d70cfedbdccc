package api

import (
	"errors"

	"woo-notify/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// respondError writes {"error", "details", "kind"} with the status mapped
// from the error kind. details carries the provider body when there is one.
func respondError(c *gin.Context, err error) {
	summary := err.Error()
	details := ""

	var e *apperrors.Error
	if errors.As(err, &e) {
		summary = e.Message
		switch {
		case e.Body != "":
			details = e.Body
		case e.Err != nil:
			details = e.Err.Error()
		}
	}

	c.JSON(apperrors.HTTPStatus(err), gin.H{
		"error":   summary,
		"details": details,
		"kind":    apperrors.KindOf(err),
	})
}
