package apihelpers

import (
	"log/slog"
	"net/http"

	"github.com/civic-lens/civic-backend/pkg/civic"
	"github.com/gin-gonic/gin"
)

// RespondWithError aborts the request with the error envelope
// {"error": {"kind", "message", "details"}}. Server side failures are logged and
// their details are never sent to the client.
func RespondWithError(c *gin.Context, err error) {
	cErr := civic.AsError(err)
	status := cErr.Kind.HTTPStatus()

	body := gin.H{
		"kind":    cErr.Kind,
		"message": cErr.Message,
	}
	if status >= http.StatusInternalServerError {
		attrs := []any{
			slog.String("kind", string(cErr.Kind)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
		}
		if cErr.Err != nil {
			attrs = append(attrs, slog.String("error", cErr.Err.Error()))
		}
		slog.Error(cErr.Message, attrs...)
	} else if cErr.Details != nil {
		body["details"] = cErr.Details
	}

	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

// RespondUnauthorized is used by the identity middleware. Authentication happens outside this
// service, so this kind is not part of the pipeline's error set.
func RespondUnauthorized(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{
		"kind":    "Unauthorized",
		"message": message,
	}})
}
