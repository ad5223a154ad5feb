package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/capitalize-ai/investor-finder/internal/middleware"
	"github.com/capitalize-ai/investor-finder/internal/service"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
)

// RouterOptions configures authentication and request limits.
type RouterOptions struct {
	JWTSecret         string
	AuthRequired      bool
	AllowedOrigins    []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	ChatRateLimit     int
	MaxRequestBytes   int64
}

// Services are the business services the API exposes.
type Services struct {
	Chat          *service.ChatService
	Conversations *service.ConversationService
	Messages      *service.MessageService
	Exports       *service.ExportService
	Auth          *service.AuthService
}

// NewRouter builds the HTTP API.
func NewRouter(opts RouterOptions, svc Services, health *HealthHandler, log *logger.Logger) http.Handler {
	chat := NewChatHandler(svc.Chat)
	conversations := NewConversationHandler(svc.Conversations)
	messages := NewMessageHandler(svc.Messages)
	exports := NewExportHandler(svc.Exports)
	auth := NewAuthHandler(svc.Auth)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.RateLimitRequests > 0 && opts.RateLimitWindow > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitRequests, opts.RateLimitWindow))
	}

	// Health endpoints (no auth required)
	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	requireAuth := middleware.Auth(opts.JWTSecret)
	userAuth := middleware.OptionalAuth(opts.JWTSecret)
	if opts.AuthRequired {
		userAuth = requireAuth
	}

	r.Route("/api/v1", func(r chi.Router) {
		if opts.MaxRequestBytes > 0 {
			r.Use(middleware.MaxBodySize(opts.MaxRequestBytes))
		}
		r.Use(middleware.RequireJSON)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/refresh", auth.Refresh)
				r.Get("/me", auth.Me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(userAuth)

			r.Group(func(r chi.Router) {
				if opts.ChatRateLimit > 0 && opts.RateLimitWindow > 0 {
					r.Use(middleware.UserRateLimit(opts.ChatRateLimit, opts.RateLimitWindow))
				}
				r.Post("/chat", chat.Chat)
				r.Post("/chat/stream", chat.Stream)
			})
			r.Get("/providers", chat.Providers)

			// Conversations
			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", conversations.List)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", conversations.Get)
					r.Delete("/", conversations.Delete)
					r.Get("/messages", messages.List)
				})
			})

			// Export
			r.Route("/export", func(r chi.Router) {
				r.Post("/{format}", exports.Direct)
				r.Get("/{id}/{format}", exports.Conversation)
			})
		})
	})

	return r
}
