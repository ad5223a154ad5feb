package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/capitalize-ai/investor-finder/internal/events"
	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/internal/scraper"
	"github.com/capitalize-ai/investor-finder/internal/search"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
	"github.com/capitalize-ai/investor-finder/pkg/metrics"
	"github.com/capitalize-ai/investor-finder/pkg/tracing"
)

// InvestorOptions configures the search path.
type InvestorOptions struct {
	SearchProvider  search.Provider
	ScraperProvider scraper.Provider
	MaxResults      int
	MaxEnrich       int
}

// InvestorService finds investors by searching the web and scraping the
// profiles it turns up.
type InvestorService struct {
	searches *search.Registry
	scrapers *scraper.Registry
	bus      events.Publisher
	opts     InvestorOptions
	logger   *logger.Logger
}

// NewInvestorService creates a new investor service.
func NewInvestorService(searches *search.Registry, scrapers *scraper.Registry, bus events.Publisher, opts InvestorOptions, log *logger.Logger) *InvestorService {
	if opts.SearchProvider == "" {
		opts.SearchProvider = search.ProviderGoogle
	}
	if opts.ScraperProvider == "" {
		opts.ScraperProvider = scraper.ProviderLinkedIn
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 30
	}
	return &InvestorService{
		searches: searches,
		scrapers: scrapers,
		bus:      bus,
		opts:     opts,
		logger:   log.Named("investors"),
	}
}

// Find searches for investors matching q. Investors are unique by lower-cased
// name and returned in search order. Up to MaxEnrich LinkedIn profiles are
// enriched from their pages. A search failure returns the error with no
// results; scrape failures only lose enrichment.
func (s *InvestorService) Find(ctx context.Context, conversationID string, q model.InvestorQuery) ([]model.Investor, []model.SearchResult, error) {
	ctx, span := tracing.Tracer("service").Start(ctx, "investors.find")
	defer span.End()

	if q.Location == "" {
		q.Location = search.DefaultLocation
	}
	span.SetAttributes(
		attribute.StringSlice("investors.sectors", q.Sectors),
		attribute.String("investors.location", q.Location),
	)

	s.bus.Publish(ctx, events.New(events.SearchStarted, "investors", conversationID, map[string]any{
		"sectors":  q.Sectors,
		"location": q.Location,
		"stage":    q.Stage,
	}))

	start := time.Now()
	results, err := s.search(ctx, q)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		s.bus.Publish(ctx, events.New(events.SearchFailed, "investors", conversationID, map[string]any{
			"category":   "search",
			"provider":   string(s.opts.SearchProvider),
			"latency_ms": latency,
			"error":      err.Error(),
		}))
		return nil, nil, err
	}
	s.bus.Publish(ctx, events.New(events.SearchCompleted, "investors", conversationID, map[string]any{
		"category":      "search",
		"provider":      string(s.opts.SearchProvider),
		"latency_ms":    latency,
		"results_count": len(results),
	}))

	sc, err := s.scrapers.Resolve(ctx, s.opts.ScraperProvider)
	if err != nil {
		s.logger.Warn("scraper unavailable, using search results only", zap.Error(err))
	}

	investors := s.collect(ctx, sc, results)
	if sc != nil {
		investors = s.enrich(ctx, conversationID, sc, investors)
	}

	for _, inv := range investors {
		s.bus.Publish(ctx, events.New(events.InvestorFound, "investors", conversationID, map[string]any{
			"name":   inv.Name,
			"source": inv.Source,
		}))
	}
	metrics.InvestorsFoundTotal.Add(float64(len(investors)))
	span.SetAttributes(
		attribute.Int("investors.results", len(results)),
		attribute.Int("investors.found", len(investors)),
	)

	s.logger.Info("investor search finished",
		zap.String("conversation_id", conversationID),
		zap.Strings("sectors", q.Sectors),
		zap.Int("results", len(results)),
		zap.Int("investors", len(investors)),
	)
	return investors, results, nil
}

func (s *InvestorService) search(ctx context.Context, q model.InvestorQuery) ([]model.SearchResult, error) {
	client, err := s.searches.Resolve(ctx, s.opts.SearchProvider)
	if err != nil {
		return nil, err
	}
	return client.SearchInvestors(ctx, q, s.opts.MaxResults)
}

// collect turns search results into investors, skipping names already seen.
func (s *InvestorService) collect(ctx context.Context, sc scraper.Client, results []model.SearchResult) []model.Investor {
	seen := make(map[string]struct{})
	investors := []model.Investor{}
	for _, result := range results {
		inv := s.classify(ctx, sc, result)
		if inv == nil || strings.TrimSpace(inv.Name) == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(inv.Name))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		investors = append(investors, *inv)
	}
	return investors
}

// classify builds an investor from one search result according to the site
// it points at. It returns nil when no plausible name can be derived.
func (s *InvestorService) classify(ctx context.Context, sc scraper.Client, r model.SearchResult) *model.Investor {
	switch {
	case strings.Contains(r.URL, "linkedin.com/in/"):
		if sc == nil {
			return scraper.FromURL(r.URL)
		}
		if inv := sc.FromSearchResult(r); inv != nil {
			return inv
		}
		inv, err := sc.ScrapeProfile(ctx, r.URL)
		if err != nil {
			s.logger.Debug("profile scrape failed", zap.String("url", r.URL), zap.Error(err))
			return nil
		}
		return inv

	case strings.Contains(r.URL, "linkedin.com/company/"):
		name, _, _ := strings.Cut(r.Title, " | ")
		name = strings.TrimSpace(name)
		return &model.Investor{
			Name:       name,
			Company:    name,
			ProfileURL: r.URL,
			Bio:        truncateRunes(r.Snippet, 500),
			Source:     "linkedin",
		}

	case strings.Contains(r.URL, "crunchbase.com/person"):
		name := titleName(r.Title, " | Crunchbase")
		return &model.Investor{
			Name:       name,
			ProfileURL: r.URL,
			Bio:        truncateRunes(r.Snippet, 500),
			Source:     "crunchbase",
		}

	case strings.Contains(r.URL, "angel.co"), strings.Contains(r.URL, "wellfound.com"):
		name := titleName(r.Title, " | AngelList", " | Wellfound")
		return &model.Investor{
			Name:       name,
			ProfileURL: r.URL,
			Bio:        truncateRunes(r.Snippet, 500),
			Source:     "angellist",
		}

	default:
		return webResultInvestor(r)
	}
}

var firmWords = []string{"inc", "ltd", "llc", "capital", "ventures", "fund"}

// webResultInvestor reads "Name - Company" titles of ordinary web pages.
func webResultInvestor(r model.SearchResult) *model.Investor {
	parts := strings.Split(r.Title, " - ")
	if len(parts) < 2 {
		return nil
	}
	name := strings.TrimSpace(parts[0])
	if name == "" || len(strings.Fields(name)) > 4 {
		return nil
	}
	lower := strings.ToLower(name)
	for _, w := range firmWords {
		if strings.Contains(lower, w) {
			return nil
		}
	}
	return &model.Investor{
		Name:    truncateRunes(name, 100),
		Company: truncateRunes(strings.TrimSpace(parts[1]), 100),
		Bio:     truncateRunes(r.Snippet, 500),
		Source:  "web_search",
	}
}

// titleName takes the part of a "Name - Headline" title before the dash and
// strips site suffixes.
func titleName(title string, suffixes ...string) string {
	name, _, _ := strings.Cut(title, " - ")
	for _, suffix := range suffixes {
		name = strings.ReplaceAll(name, suffix, "")
	}
	return truncateRunes(strings.TrimSpace(name), 100)
}

// enrich fills investors from their profile pages, at most MaxEnrich of them.
func (s *InvestorService) enrich(ctx context.Context, conversationID string, sc scraper.Client, investors []model.Investor) []model.Investor {
	enriched := 0
	for i := range investors {
		if enriched >= s.opts.MaxEnrich {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if !sc.CanHandle(investors[i].ProfileURL) {
			continue
		}
		enriched++

		inv, err := sc.Enrich(ctx, &investors[i])
		if err != nil {
			s.bus.Publish(ctx, events.New(events.ScrapeFailed, "investors", conversationID, map[string]any{
				"url":   investors[i].ProfileURL,
				"error": err.Error(),
			}))
			continue
		}
		investors[i] = *inv
		s.bus.Publish(ctx, events.New(events.ScrapeCompleted, "investors", conversationID, map[string]any{
			"url":  inv.ProfileURL,
			"name": inv.Name,
		}))
	}
	return investors
}

func truncateRunes(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
