package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/godi-api/internal/presentation/http/dto/response"
	"github.com/sangkips/godi-api/pkg/logger"
)

// RecoveryMiddleware turns a handler panic into a 500 with the usual error body
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error(c.Request.Context()).
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("handler panicked")
		response.AbortWithError(c, http.StatusInternalServerError, "Internal server error")
	})
}
