package apihandlers

import (
	"log/slog"

	"github.com/civic-lens/civic-backend/pkg/apihelpers"
	"github.com/civic-lens/civic-backend/pkg/apihelpers/middlewares"
	"github.com/civic-lens/civic-backend/pkg/civic"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// pathID returns the id path parameter checked by ValidateObjectIDParams.
func pathID(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := middlewares.GetObjectIDParam(c, "id")
	if !ok {
		slog.Error("id parameter not validated", slog.String("path", c.FullPath()))
		apihelpers.RespondWithError(c, civic.Internal("route misconfigured", nil))
	}
	return id, ok
}

// callerID returns the user id of the authenticated caller.
func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := middlewares.GetIdentity(c)
	if !ok {
		slog.Error("identity missing in context", slog.String("path", c.FullPath()))
		apihelpers.RespondWithError(c, civic.Internal("route misconfigured", nil))
	}
	return id, ok
}
