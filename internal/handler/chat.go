package handler

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/investor-finder/internal/apperr"
	"github.com/capitalize-ai/investor-finder/internal/middleware"
	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/internal/service"
	"github.com/capitalize-ai/investor-finder/pkg/metrics"
)

// ChatHandler handles chat endpoints.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.chat.Handle(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stream handles POST /api/v1/chat/stream. The reply is sent as server-sent
// events; requests rejected before the stream opens get a JSON error.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, apperr.New(apperr.KindInternal, "chat.Stream", "streaming not supported"))
		return
	}

	// A streamed turn may run longer than the server write timeout. The
	// request context still bounds it.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		middleware.GetLogger(ctx).Warn("clear stream write deadline", zap.Error(err))
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	sse := newSSEWriter(w, flusher)
	err := h.chat.HandleStream(ctx, middleware.GetUserID(ctx), &req, sse.send)
	if err == nil {
		return
	}
	if !sse.started {
		writeError(w, r, err)
		return
	}

	if ctx.Err() != nil {
		middleware.GetLogger(ctx).Info("stream client disconnected")
		return
	}
	middleware.GetLogger(ctx).Error("chat stream failed", zap.Error(err))
	sse.send(model.StreamEvent{
		Type: model.StreamError,
		Data: model.ErrorEvent{
			Code:    string(apperr.KindOf(err)),
			Message: apperr.MessageOf(err),
		},
	})
}

// Providers handles GET /api/v1/providers
func (h *ChatHandler) Providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.chat.Providers(r.Context()))
}
