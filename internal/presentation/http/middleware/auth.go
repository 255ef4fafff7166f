package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/godi-api/internal/presentation/http/dto/response"
	"github.com/sangkips/godi-api/pkg/logger"
	"github.com/sangkips/godi-api/pkg/utils"
)

// UserIDKey is the gin context key holding the authenticated owner id
const UserIDKey = "user_id"

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(verifier *utils.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AbortWithError(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		tokenString, ok := utils.BearerToken(authHeader)
		if !ok {
			response.AbortWithError(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		ownerID, err := verifier.Verify(tokenString)
		if err != nil {
			logger.Debug(c.Request.Context()).Err(err).Msg("bearer token rejected")
			response.AbortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, ownerID)

		// Later log lines for this request carry the owner
		l := logger.WithContext(c.Request.Context()).With().Str("user_id", ownerID.String()).Logger()
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), l))

		c.Next()
	}
}
