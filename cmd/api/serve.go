package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/investor-finder/internal/config"
	"github.com/capitalize-ai/investor-finder/internal/events"
	"github.com/capitalize-ai/investor-finder/internal/handler"
	"github.com/capitalize-ai/investor-finder/internal/llm"
	natsclient "github.com/capitalize-ai/investor-finder/internal/nats"
	"github.com/capitalize-ai/investor-finder/internal/scraper"
	"github.com/capitalize-ai/investor-finder/internal/search"
	"github.com/capitalize-ai/investor-finder/internal/service"
	"github.com/capitalize-ai/investor-finder/internal/store"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
	"github.com/capitalize-ai/investor-finder/pkg/tracing"
)

func runServe(parent context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting API server", zap.String("env", cfg.Env))

	// Initialize tracing if enabled
	if cfg.TracingEnabled {
		if err := tracing.InitTracer(ctx, "investor-finder", cfg.TracingEndpoint); err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(context.Background())
		}
	}

	db, err := store.Open(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer store.Close(db)
	if err := store.Migrate(db); err != nil {
		return err
	}
	st := store.New(db)

	llms, searches, scrapers := buildRegistries(ctx, cfg, log)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, c := range []interface{ Close(context.Context) error }{llms, searches, scrapers} {
			if err := c.Close(closeCtx); err != nil {
				log.Warn("failed to close providers", zap.Error(err))
			}
		}
	}()

	bus := events.NewBus()
	defer bus.Close()
	natsClient, err := startConsumers(ctx, cfg, bus, st, log)
	if err != nil {
		return err
	}
	if natsClient != nil {
		defer natsClient.Close()
	}

	investors := service.NewInvestorService(searches, scrapers, bus, service.InvestorOptions{
		MaxResults: cfg.SearchMaxResults,
		MaxEnrich:  cfg.ScrapeMaxEnrich,
	}, log)
	chat := service.NewChatService(st, llms, investors, service.NewCooldowns(cfg.ProviderCooldown), bus, service.ChatOptions{
		FallbackOrder: cfg.LLMFallbackOrder,
		Timeout:       cfg.LLMTimeout,
		MaxTokens:     cfg.LLMMaxTokens,
		Temperature:   cfg.LLMTemperature,
		HistoryLimit:  cfg.HistoryLimit,
		PageSize:      cfg.PageSize,
	}, log)
	conversations := service.NewConversationService(st, log)

	router := handler.NewRouter(handler.RouterOptions{
		JWTSecret:         cfg.JWTSecret,
		AuthRequired:      cfg.AuthRequired,
		AllowedOrigins:    cfg.AllowedOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		ChatRateLimit:     cfg.ChatRateLimit,
		MaxRequestBytes:   cfg.MaxRequestBytes,
	}, handler.Services{
		Chat:          chat,
		Conversations: conversations,
		Messages:      service.NewMessageService(st, conversations),
		Exports:       service.NewExportService(conversations),
		Auth:          service.NewAuthService(st, cfg.JWTSecret, cfg.JWTExpiration, log),
	}, handler.NewHealthHandler(db, natsClient), log)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}

// buildRegistries registers every provider. Providers are constructed lazily,
// so missing API keys only surface when a provider is first used.
func buildRegistries(ctx context.Context, cfg *config.Config, log *logger.Logger) (*llm.Registry, *search.Registry, *scraper.Registry) {
	llms := llm.NewRegistry()
	llm.Register(llms, map[llm.Provider]llm.Options{
		llm.ProviderAnthropic: {APIKey: cfg.AnthropicAPIKey, Model: cfg.AnthropicModel},
		llm.ProviderOpenAI:    {APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel},
		llm.ProviderGemini:    {APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL},
	})

	var cache search.Cache
	if cfg.RedisURL != "" {
		rc, err := search.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("search cache disabled", zap.Error(err))
		} else {
			cache = rc
		}
	}
	searches := search.NewRegistry()
	search.Register(searches, search.GoogleOptions{
		APIKey:   cfg.GoogleSearchAPIKey,
		EngineID: cfg.GoogleSearchEngineID,
		BaseURL:  cfg.GoogleSearchURL,
		Timeout:  cfg.SearchTimeout,
	}, cache, cfg.SearchCacheTTL, log)
	if !cfg.SearchConfigured() {
		log.Warn("google search is not configured; investor search will fail")
	}

	scrapers := scraper.NewRegistry()
	scraper.Register(scrapers, scraper.LinkedInOptions{
		Delay:     cfg.ScrapeDelay,
		Timeout:   cfg.ScrapeTimeout,
		UserAgent: cfg.ScrapeUserAgent,
	}, log)

	return llms, searches, scrapers
}

// startConsumers attaches the event log, usage recorder and, when enabled,
// the NATS forwarder to the bus. Consumers stop when the bus closes.
func startConsumers(ctx context.Context, cfg *config.Config, bus *events.Bus, st *store.Store, log *logger.Logger) (*natsclient.Client, error) {
	logCh, _ := bus.Subscribe(256)
	go events.Consume(ctx, logCh, events.LogHandler(log))

	usageCh, _ := bus.Subscribe(256, service.UsageEvents...)
	go events.Consume(context.WithoutCancel(ctx), usageCh, service.UsageRecorder(st, log))

	if !cfg.NATSEnabled {
		return nil, nil
	}

	natsClient, err := natsclient.Connect(ctx, natsclient.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		return nil, err
	}
	if err := natsclient.NewStreamManager(natsClient).EnsureStream(ctx); err != nil {
		natsClient.Close()
		return nil, err
	}

	natsCh, _ := bus.Subscribe(1024)
	go events.Consume(context.WithoutCancel(ctx), natsCh, natsclient.Forwarder(natsClient.JetStream(), log))
	return natsClient, nil
}
