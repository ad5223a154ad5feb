package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/capitalize-ai/investor-finder/internal/apperr"
	"github.com/capitalize-ai/investor-finder/internal/middleware"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and writes a JSON error response.
// Internal errors are logged and reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		middleware.GetLogger(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{
		Error: apperr.MessageOf(err),
		Kind:  string(apperr.KindOf(err)),
	})
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &tooLarge):
		return apperr.New(apperr.KindValidation, "decode", "request body too large")
	case errors.Is(err, io.EOF):
		return apperr.New(apperr.KindValidation, "decode", "request body is required")
	default:
		return apperr.New(apperr.KindValidation, "decode", "invalid request body")
	}
}

// queryInt reads a non-negative integer query parameter, returning def when
// it is absent or malformed.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// pathID reads and validates the {id} URL parameter.
func pathID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateConversationID(id); err != nil {
		return "", apperr.New(apperr.KindValidation, "path", err.Error())
	}
	return id, nil
}
