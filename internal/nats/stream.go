package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/capitalize-ai/investor-finder/internal/events"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
	"github.com/capitalize-ai/investor-finder/pkg/metrics"
)

const (
	// StreamName is the name of the domain event stream.
	StreamName = "INVESTOR_FINDER_EVENTS"

	// SubjectPrefix is the prefix for all event subjects.
	SubjectPrefix = "investor"
)

// Publisher is the subset of JetStream used to publish events.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// StreamManager handles JetStream stream operations.
type StreamManager struct {
	js jetstream.JetStream
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{js: client.JetStream()}
}

// EnsureStream ensures the event stream exists with proper configuration.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	_, err := m.js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = m.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		MaxBytes:    10 * 1024 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Investor finder chat, search and provider events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// EventSubject returns the subject for an event: investor.<conversation>.<type>.
// Events without a conversation use "system".
func EventSubject(e events.Event) string {
	conv := e.ConversationID
	if conv == "" {
		conv = "system"
	}
	conv = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(conv)
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, conv, e.Type)
}

// PublishEvent publishes an event to JetStream, deduplicated by event id.
func PublishEvent(ctx context.Context, js Publisher, e events.Event) (uint64, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := js.Publish(ctx, EventSubject(e), data, jetstream.WithMsgID(e.ID))
	if err != nil {
		return 0, fmt.Errorf("failed to publish event: %w", err)
	}

	return ack.Sequence, nil
}

// Forwarder returns an events.Consume handler that mirrors bus events to
// JetStream. Publish failures are logged and counted, never retried.
func Forwarder(js Publisher, log *logger.Logger) func(context.Context, events.Event) {
	log = log.Named("nats.forwarder")
	return func(ctx context.Context, e events.Event) {
		pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if _, err := PublishEvent(pubCtx, js, e); err != nil {
			metrics.EventsForwardedTotal.WithLabelValues("error").Inc()
			log.Warn("event forward failed", zap.String("event_type", string(e.Type)), zap.Error(err))
			return
		}
		metrics.EventsForwardedTotal.WithLabelValues("ok").Inc()
	}
}
