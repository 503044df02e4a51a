package middlewares

import (
	"log/slog"

	"github.com/civic-lens/civic-backend/pkg/apihelpers"
	"github.com/civic-lens/civic-backend/pkg/validation"
	"github.com/gin-gonic/gin"
)

// RequirePayload blocks post requests that have no payload attached
func RequirePayload() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength == 0 {
			slog.Debug("RequirePayload Middleware: payload missing")
			apihelpers.RespondWithError(c, (&validation.ValidationError{}).Add("", "body", "payload missing"))
			return
		}
		c.Next()
	}
}
