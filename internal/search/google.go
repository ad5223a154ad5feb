package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
	"github.com/capitalize-ai/investor-finder/pkg/metrics"
)

const (
	defaultGoogleURL = "https://www.googleapis.com/customsearch/v1"
	maxPerRequest    = 10
)

// GoogleOptions configures the Google Custom Search client.
type GoogleOptions struct {
	APIKey   string
	EngineID string
	BaseURL  string
	Timeout  time.Duration
}

// GoogleClient queries the Google Custom Search JSON API.
type GoogleClient struct {
	opts GoogleOptions
	http *http.Client
	log  *logger.Logger
}

// NewGoogleClient creates a new Google search client.
func NewGoogleClient(opts GoogleOptions, log *logger.Logger) *GoogleClient {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultGoogleURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	return &GoogleClient{opts: opts, log: log.Named("search.google")}
}

// Name returns the provider name.
func (c *GoogleClient) Name() string {
	return string(ProviderGoogle)
}

// Initialize checks credentials and prepares the HTTP client.
func (c *GoogleClient) Initialize(context.Context) error {
	if c.opts.APIKey == "" || c.opts.EngineID == "" {
		return errors.New("google search api key and engine id are required")
	}
	c.http = &http.Client{Timeout: c.opts.Timeout}
	return nil
}

// Cleanup closes idle connections.
func (c *GoogleClient) Cleanup(context.Context) error {
	if c.http != nil {
		c.http.CloseIdleConnections()
	}
	return nil
}

// Search runs a single query. The API returns at most 10 results per call.
func (c *GoogleClient) Search(ctx context.Context, query string, n int) ([]model.SearchResult, error) {
	if c.http == nil {
		return nil, errors.New("google search client not initialized")
	}
	if n <= 0 || n > maxPerRequest {
		n = maxPerRequest
	}

	params := url.Values{
		"cx":  {c.opts.EngineID},
		"q":   {query},
		"num": {strconv.Itoa(n)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", c.opts.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		return nil, fmt.Errorf("google search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		return nil, fmt.Errorf("google search read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.SearchRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		msg := gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return nil, fmt.Errorf("google search status %d: %s", resp.StatusCode, msg)
	}
	metrics.SearchRequestsTotal.WithLabelValues(c.Name(), "ok").Inc()

	var results []model.SearchResult
	gjson.GetBytes(body, "items").ForEach(func(_, item gjson.Result) bool {
		results = append(results, model.SearchResult{
			Title:   item.Get("title").String(),
			URL:     item.Get("link").String(),
			Snippet: item.Get("snippet").String(),
			Source:  c.Name(),
		})
		return len(results) < n
	})
	return results, nil
}

// SearchInvestors runs the investor query set, skipping posts and articles,
// until n unique URLs are collected. A failing query is logged and skipped.
func (c *GoogleClient) SearchInvestors(ctx context.Context, q model.InvestorQuery, n int) ([]model.SearchResult, error) {
	if n <= 0 {
		n = 30
	}

	seen := make(map[string]struct{})
	var results []model.SearchResult
	var failures int

	queries := InvestorQueries(q)
	for _, query := range queries {
		if len(results) >= n {
			break
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		hits, err := c.Search(ctx, query, maxPerRequest)
		if err != nil {
			failures++
			c.log.Warn("search query failed", zap.String("query", truncate(query, 60)), zap.Error(err))
			continue
		}
		for _, hit := range hits {
			if IsContentPage(hit.URL) {
				continue
			}
			if _, dup := seen[hit.URL]; dup {
				continue
			}
			seen[hit.URL] = struct{}{}
			results = append(results, hit)
		}
	}

	if failures == len(queries) {
		return nil, fmt.Errorf("all %d investor queries failed", failures)
	}

	c.log.Info("investor search complete",
		zap.Strings("sectors", q.Sectors),
		zap.String("location", q.Location),
		zap.Int("results", len(results)),
	)
	if len(results) > n {
		results = results[:n]
	}
	return results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Register adds the Google provider to reg. A non-nil cache wraps it with a
// result cache.
func Register(reg *Registry, opts GoogleOptions, cache Cache, ttl time.Duration, log *logger.Logger) {
	reg.Register(ProviderGoogle, func(context.Context) (Client, error) {
		var c Client = NewGoogleClient(opts, log)
		if cache != nil {
			c = WithCache(c, cache, ttl, log)
		}
		return c, nil
	})
}
