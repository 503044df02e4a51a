package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/civic-lens/civic-backend/pkg/apihelpers"
	jwthandling "github.com/civic-lens/civic-backend/pkg/jwt-handling"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	HeaderAuthorization = "Authorization"

	CTX_KEY_IDENTITY = "identity"
)

// RequireIdentity validates the bearer token issued by the identity provider and stores the
// caller's user id in the context.
func RequireIdentity(tokenSignKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c)
		if err != nil {
			slog.Warn("no Authorization token found")
			apihelpers.RespondUnauthorized(c, http.StatusUnauthorized, err.Error())
			return
		}

		parsedToken, ok, err := jwthandling.ValidateIdentityToken(token, tokenSignKey)
		if err != nil || !ok {
			attrs := []any{}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			slog.Warn("token validation failed", attrs...)
			apihelpers.RespondUnauthorized(c, http.StatusUnauthorized, "error during token validation")
			return
		}

		userID, err := primitive.ObjectIDFromHex(parsedToken.Subject)
		if err != nil {
			slog.Warn("token subject is not a valid user id", slog.String("subject", parsedToken.Subject))
			apihelpers.RespondUnauthorized(c, http.StatusUnauthorized, "invalid token subject")
			return
		}

		c.Set(CTX_KEY_IDENTITY, userID)
		c.Next()
	}
}

// GetIdentity returns the user id stored by RequireIdentity.
func GetIdentity(c *gin.Context) (primitive.ObjectID, bool) {
	value, ok := c.Get(CTX_KEY_IDENTITY)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := value.(primitive.ObjectID)
	return id, ok
}

func extractToken(c *gin.Context) (string, error) {
	req := c.Request

	var token string
	tokens, ok := req.Header[HeaderAuthorization]
	if ok && len(tokens) > 0 {
		token = tokens[0]
		token = strings.TrimPrefix(token, "Bearer ")
		if len(token) == 0 {
			return token, errors.New("no token found in Authorization header")
		}
	} else {
		return token, errors.New("no Authorization header found")
	}
	return token, nil
}
