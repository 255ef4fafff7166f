package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/infrastructure/events"
	"github.com/sangkips/godi-api/internal/presentation/http/dto/response"
	"github.com/sangkips/godi-api/pkg/logger"
)

const defaultKeepAlive = 25 * time.Second

// Subscriber hands out per-owner change event streams
type Subscriber interface {
	Subscribe(ownerID uuid.UUID) (<-chan events.ChangeEvent, func())
}

// EventsHandler streams change notifications as server-sent events
type EventsHandler struct {
	hub       Subscriber
	keepAlive time.Duration
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub Subscriber, keepAlive time.Duration) *EventsHandler {
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	return &EventsHandler{hub: hub, keepAlive: keepAlive}
}

// Stream pushes the caller's change events until the client disconnects
func (h *EventsHandler) Stream(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	ch, cancel := h.hub.Subscribe(*userID)
	defer cancel()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	logger.Debug(c.Request.Context()).Msg("event stream opened")
	c.Stream(func(w io.Writer) bool {
		select {
		case evt, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(evt.Type), evt)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
	logger.Debug(c.Request.Context()).Msg("event stream closed")
}
