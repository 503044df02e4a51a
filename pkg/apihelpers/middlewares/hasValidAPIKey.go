package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/civic-lens/civic-backend/pkg/apihelpers"
	"github.com/gin-gonic/gin"
)

// HasValidAPIKey guards internal endpoints such as /metrics. With no keys configured every
// request passes.
func HasValidAPIKey(validKeys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(validKeys) == 0 {
			c.Next()
			return
		}

		keysInHeader, ok := c.Request.Header["Api-Key"]
		if !ok || len(keysInHeader) < 1 {
			slog.Warn("api key missing", slog.String("path", c.Request.URL.Path))
			apihelpers.RespondUnauthorized(c, http.StatusUnauthorized, "a valid API key is missing")
			return
		}

		for _, k := range keysInHeader {
			for _, vk := range validKeys {
				if k == vk {
					c.Next()
					return
				}
			}
		}

		slog.Warn("api key rejected", slog.String("path", c.Request.URL.Path))
		apihelpers.RespondUnauthorized(c, http.StatusUnauthorized, "a valid API key is missing")
	}
}
