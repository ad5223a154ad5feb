package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
)

func newTestGoogle(t *testing.T, handler http.HandlerFunc) *GoogleClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewGoogleClient(GoogleOptions{APIKey: "key", EngineID: "cx", BaseURL: srv.URL}, logger.NewNop())
	require.NoError(t, c.Initialize(context.Background()))
	return c
}

func TestGoogleSearch(t *testing.T) {
	c := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, q.Get("key"))
		assert.Equal(t, "cx", q.Get("cx"))
		assert.Equal(t, "fintech investors", q.Get("q"))
		assert.Equal(t, "10", q.Get("num"))

		fmt.Fprint(w, `{"items": [
			{"title": "Jane Doe - Partner | LinkedIn", "link": "https://www.linkedin.com/in/jane-doe", "snippet": "Partner at Acme Ventures"},
			{"title": "John Roe", "link": "https://www.crunchbase.com/person/john-roe", "snippet": ""}
		]}`)
	})

	results, err := c.Search(context.Background(), "fintech investors", 25)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe", results[0].URL)
	assert.Equal(t, "Partner at Acme Ventures", results[0].Snippet)
	assert.Equal(t, "google", results[1].Source)
}

func TestGoogleSearchErrorStatus(t *testing.T) {
	c := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"message": "daily limit exceeded"}}`)
	})

	_, err := c.Search(context.Background(), "q", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily limit exceeded")
}

func TestSearchInvestorsDedupesAndSkipsPosts(t *testing.T) {
	var calls atomic.Int32
	c := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		fmt.Fprintf(w, `{"items": [
			{"title": "Shared", "link": "https://www.linkedin.com/in/shared"},
			{"title": "Post", "link": "https://www.linkedin.com/posts/someone-123"},
			{"title": "Unique %d", "link": "https://www.linkedin.com/in/unique-%d"}
		]}`, n, n)
	})

	results, err := c.SearchInvestors(context.Background(), model.InvestorQuery{Sectors: []string{"fintech"}}, 5)
	require.NoError(t, err)

	require.Len(t, results, 5)
	urls := make(map[string]bool)
	for _, r := range results {
		assert.False(t, strings.Contains(r.URL, "/posts/"))
		assert.False(t, urls[r.URL], "duplicate %s", r.URL)
		urls[r.URL] = true
	}
	// 1 shared + 1 unique per call; five results need four calls.
	assert.Equal(t, int32(4), calls.Load())
}

func TestSearchInvestorsAllQueriesFail(t *testing.T) {
	c := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.SearchInvestors(context.Background(), model.InvestorQuery{Sectors: []string{"ai"}}, 30)
	require.Error(t, err)
}

func TestInvestorQueriesDefaultLocation(t *testing.T) {
	queries := InvestorQueries(model.InvestorQuery{Sectors: []string{"ai", "saas"}})

	require.NotEmpty(t, queries)
	assert.Contains(t, queries[1], `"United States"`)
	assert.Contains(t, queries[0], "ai OR saas")
}

func TestGoogleTransportErrorOmitsKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	c := NewGoogleClient(GoogleOptions{APIKey: "SECRET-KEY-123", EngineID: "cx", BaseURL: baseURL}, logger.NewNop())
	require.NoError(t, c.Initialize(context.Background()))

	_, err := c.Search(context.Background(), "fintech investors", 10)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
}
