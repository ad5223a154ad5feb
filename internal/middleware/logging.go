package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capitalize-ai/investor-finder/pkg/logger"
	"github.com/capitalize-ai/investor-finder/pkg/metrics"
)

const (
	// CorrelationIDKey is the context key for correlation ID.
	CorrelationIDKey ContextKey = "correlation_id"
	// LoggerKey is the context key for the request-scoped logger.
	LoggerKey ContextKey = "logger"
)

// Logging creates request logging middleware. It attaches a correlation ID
// and a request-scoped logger to the context, logs the completed request and
// records request metrics under the matched route pattern.
func Logging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			correlationID := r.Header.Get("X-Correlation-ID")
			if correlationID == "" || len(correlationID) > 64 {
				correlationID = uuid.NewString()
			}
			w.Header().Set("X-Correlation-ID", correlationID)

			// The wrapper keeps http.Flusher available to SSE handlers.
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLog := log.WithRequest(correlationID, "", "")
			ctx := context.WithValue(r.Context(), CorrelationIDKey, correlationID)
			ctx = context.WithValue(ctx, LoggerKey, reqLog)

			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)

			reqLog.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", duration),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
			)

			metrics.RecordRequest(r.Method, routePattern(r), strconv.Itoa(status), duration.Seconds())
		})
	}
}

// routePattern returns the matched chi pattern, falling back to a fixed label
// for unmatched paths.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// GetCorrelationID gets correlation ID from context.
func GetCorrelationID(ctx context.Context) string {
	if v, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return v
	}
	return ""
}

// GetLogger returns the request-scoped logger, or the global logger outside a
// request.
func GetLogger(ctx context.Context) *logger.Logger {
	if l, ok := ctx.Value(LoggerKey).(*logger.Logger); ok {
		return l
	}
	return logger.Global()
}
