package middlewares

import (
	"github.com/civic-lens/civic-backend/pkg/apihelpers"
	"github.com/civic-lens/civic-backend/pkg/validation"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func objectIDParamKey(name string) string {
	return "objectIDParam:" + name
}

// ValidateObjectIDParams parses the named path parameters as store identifiers before any
// handler runs. The first malformed one aborts the request with InvalidIdentifier.
func ValidateObjectIDParams(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range names {
			id, err := validation.ParseObjectID(name, c.Param(name))
			if err != nil {
				apihelpers.RespondWithError(c, err)
				return
			}
			c.Set(objectIDParamKey(name), id)
		}
		c.Next()
	}
}

// GetObjectIDParam returns a path parameter parsed by ValidateObjectIDParams.
func GetObjectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	value, ok := c.Get(objectIDParamKey(name))
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := value.(primitive.ObjectID)
	return id, ok
}
