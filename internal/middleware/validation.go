package middleware

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/capitalize-ai/investor-finder/internal/model"
)

// ValidateConversationID validates a conversation ID: 1 to 64 letters,
// digits, dashes or underscores.
func ValidateConversationID(id string) error {
	if !model.ValidConversationID(id) {
		return errors.New("invalid conversation ID format")
	}
	return nil
}

// RequireJSON rejects write requests carrying a body whose Content-Type is
// not JSON.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		write := r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch
		if write && r.ContentLength != 0 {
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				writeError(w, http.StatusUnsupportedMediaType, "ValidationFailure", "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// MaxBodySize limits request bodies to n bytes.
func MaxBodySize(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > n {
				writeError(w, http.StatusRequestEntityTooLarge, "ValidationFailure", "request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes the API's JSON error body.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"kind":  kind,
	})
}
