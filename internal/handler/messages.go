package handler

import (
	"net/http"

	"github.com/capitalize-ai/investor-finder/internal/middleware"
	"github.com/capitalize-ai/investor-finder/internal/service"
)

// MessageHandler handles message endpoints.
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(msgSvc *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: msgSvc}
}

// List handles GET /api/v1/conversations/{id}/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.messageService.GetMessages(ctx, middleware.GetUserID(ctx), id, queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
