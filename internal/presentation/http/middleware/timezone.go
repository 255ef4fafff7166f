package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/godi-api/internal/presentation/http/dto/response"
)

const (
	// TimezoneHeader names the caller's IANA time zone
	TimezoneHeader = "X-Timezone"
	// LocationKey is the gin context key holding the resolved *time.Location
	LocationKey = "location"
)

// TimezoneMiddleware resolves the caller's calendar from the tz query parameter or the
// X-Timezone header, falling back to the configured zone.
func TimezoneMiddleware(fallback *time.Location) gin.HandlerFunc {
	if fallback == nil {
		fallback = time.UTC
	}
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.Query("tz"))
		if name == "" {
			name = strings.TrimSpace(c.GetHeader(TimezoneHeader))
		}

		loc := fallback
		if name != "" {
			resolved, err := time.LoadLocation(name)
			if err != nil {
				response.AbortWithError(c, http.StatusBadRequest, "Invalid time zone: "+name)
				return
			}
			loc = resolved
		}

		c.Set(LocationKey, loc)
		c.Next()
	}
}
