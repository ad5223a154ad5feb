package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/capitalize-ai/investor-finder/pkg/logger"
)

// LogHandler returns a Consume handler that writes events to log. Failure
// events log at warn level.
func LogHandler(log *logger.Logger) func(context.Context, Event) {
	log = log.Named("events")
	return func(_ context.Context, e Event) {
		fields := []zap.Field{
			zap.String("event_id", e.ID),
			zap.String("event_type", string(e.Type)),
			zap.String("source", e.Source),
		}
		if e.ConversationID != "" {
			fields = append(fields, zap.String("conversation_id", e.ConversationID))
		}
		if len(e.Data) > 0 {
			fields = append(fields, zap.Any("data", e.Data))
		}

		switch e.Type {
		case SearchFailed, ScrapeFailed, ProviderFailed, ProvidersExhausted:
			log.Warn("event", fields...)
		default:
			log.Debug("event", fields...)
		}
	}
}
