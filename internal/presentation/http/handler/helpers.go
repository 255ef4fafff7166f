package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/presentation/http/middleware"
	"github.com/sangkips/godi-api/pkg/apperror"
	"github.com/sangkips/godi-api/pkg/validation"
)

const dateLayout = "2006-01-02"

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return nil
	}
	return &userID
}

// GetLocation returns the caller's calendar resolved by TimezoneMiddleware, or UTC
func GetLocation(c *gin.Context) *time.Location {
	if v, ok := c.Get(middleware.LocationKey); ok {
		if loc, ok := v.(*time.Location); ok && loc != nil {
			return loc
		}
	}
	return time.UTC
}

// parseIDParam reads a UUID path parameter. An unparsable id can never match a row,
// so it is reported the same way as a missing one.
func parseIDParam(c *gin.Context, name, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.NewNotFoundError(resource)
	}
	return id, nil
}

// parseDateBound accepts YYYY-MM-DD (a whole day in loc) or an RFC 3339 instant.
// endOfDay selects the last instant of a date-only value.
func parseDateBound(field, value string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(dateLayout, value, loc); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	return nil, apperror.NewValidationError([]string{validation.Message(field, false)})
}
