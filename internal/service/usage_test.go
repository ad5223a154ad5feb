package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/investor-finder/internal/events"
	"github.com/capitalize-ai/investor-finder/internal/store/storetest"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
)

func TestUsageRecorder(t *testing.T) {
	st := storetest.New(t)
	record := UsageRecorder(st, logger.NewNop())
	ctx := context.Background()

	record(ctx, events.New(events.ProviderSucceeded, "chat", "c1", map[string]any{
		"category": "llm", "provider": "openai", "latency_ms": int64(100), "tokens_in": 10, "tokens_out": 5,
	}))
	record(ctx, events.New(events.ProviderFailed, "chat", "c1", map[string]any{
		"category": "llm", "provider": "openai", "latency_ms": float64(300), "error": "boom",
	}))
	record(ctx, events.New(events.SearchCompleted, "investors", "c1", map[string]any{
		"category": "search", "provider": "google", "latency_ms": int64(50),
	}))
	// Ignored: wrong type, missing provider.
	record(ctx, events.New(events.InvestorFound, "investors", "c1", map[string]any{"provider": "x"}))
	record(ctx, events.New(events.ProviderFailed, "chat", "c1", map[string]any{"category": "llm"}))

	summary, err := st.Usage.Summary(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, summary, 2)

	assert.Equal(t, "llm", summary[0].Category)
	assert.Equal(t, "openai", summary[0].Provider)
	assert.Equal(t, int64(2), summary[0].Calls)
	assert.Equal(t, int64(1), summary[0].Failures)
	assert.InDelta(t, 200, summary[0].AvgLatencyMs, 0.001)

	assert.Equal(t, "search", summary[1].Category)
	assert.Equal(t, int64(0), summary[1].Failures)
}

func TestIntField(t *testing.T) {
	data := map[string]any{"a": 3, "b": int64(4), "c": float64(5), "d": "6"}
	assert.Equal(t, 3, intField(data, "a"))
	assert.Equal(t, 4, intField(data, "b"))
	assert.Equal(t, 5, intField(data, "c"))
	assert.Equal(t, 0, intField(data, "d"))
	assert.Equal(t, 0, intField(data, "missing"))
}
