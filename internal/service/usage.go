package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/capitalize-ai/investor-finder/internal/events"
	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/internal/store"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
)

// UsageEvents are the event types UsageRecorder persists.
var UsageEvents = []events.Type{
	events.ProviderSucceeded,
	events.ProviderFailed,
	events.SearchCompleted,
	events.SearchFailed,
}

// UsageRecorder returns a Consume handler that stores provider calls in the
// provider_usage table.
func UsageRecorder(st *store.Store, log *logger.Logger) func(context.Context, events.Event) {
	log = log.Named("usage")
	return func(ctx context.Context, e events.Event) {
		u := usageFromEvent(e)
		if u == nil {
			return
		}
		if err := st.Usage.Record(ctx, u); err != nil {
			log.Warn("failed to record provider usage", zap.String("provider", u.Provider), zap.Error(err))
		}
	}
}

func usageFromEvent(e events.Event) *model.ProviderUsage {
	var success bool
	switch e.Type {
	case events.ProviderSucceeded, events.SearchCompleted:
		success = true
	case events.ProviderFailed, events.SearchFailed:
	default:
		return nil
	}

	u := &model.ProviderUsage{
		Category:       stringField(e.Data, "category"),
		Provider:       stringField(e.Data, "provider"),
		ConversationID: e.ConversationID,
		LatencyMs:      int64(intField(e.Data, "latency_ms")),
		TokensIn:       intField(e.Data, "tokens_in"),
		TokensOut:      intField(e.Data, "tokens_out"),
		Success:        success,
		Error:          truncateRunes(stringField(e.Data, "error"), 500),
	}
	if u.Provider == "" {
		return nil
	}
	return u
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// intField reads a number that may have passed through JSON.
func intField(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
