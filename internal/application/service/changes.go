package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/infrastructure/events"
	"github.com/sangkips/godi-api/internal/infrastructure/metrics"
	"github.com/sangkips/godi-api/pkg/logger"
)

// publishChange hands a change event to the publisher. Failures are logged and counted, never returned.
func publishChange(ctx context.Context, pub events.Publisher, m *metrics.Metrics, t events.EventType, ownerID, entityID uuid.UUID) {
	result := "ok"
	if err := pub.Publish(ctx, events.NewChangeEvent(t, ownerID, entityID)); err != nil {
		result = "error"
		logger.Warn(ctx).Err(err).
			Str("event_type", string(t)).
			Str("entity_id", entityID.String()).
			Msg("change event not published")
	}
	if m != nil {
		m.EventsPublished.WithLabelValues(string(t), result).Inc()
	}
}
