package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/capitalize-ai/investor-finder/internal/model"
)

// sseWriter writes server-sent events. Headers are sent with the first
// event, so a request rejected before any event can still get a JSON error.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func newSSEWriter(w http.ResponseWriter, flusher http.Flusher) *sseWriter {
	return &sseWriter{w: w, flusher: flusher}
}

func (s *sseWriter) start() {
	if s.started {
		return
	}
	s.started = true
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // Disable nginx buffering
	s.w.WriteHeader(http.StatusOK)
}

// send writes one event. Write errors mean the client went away; the chat
// service notices through the request context.
func (s *sseWriter) send(e model.StreamEvent) {
	s.start()
	_ = sendSSEEvent(s.w, s.flusher, string(e.Type), e.Data)
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
