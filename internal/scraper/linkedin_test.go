package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
)

const profileHTML = `<!DOCTYPE html>
<html><head>
<meta property="og:title" content="Jane Doe - General Partner | LinkedIn">
<meta property="og:description" content="General Partner at Acme Ventures. Investing in fintech and AI. Based in San Francisco">
</head><body><h1>Ignored Heading</h1></body></html>`

func TestParseProfileOpenGraph(t *testing.T) {
	inv, err := ParseProfile(profileHTML)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", inv.Name)
	assert.Equal(t, "General Partner", inv.Title)
	assert.Equal(t, "Acme Ventures", inv.Company)
	assert.Equal(t, "San Francisco", inv.Location)
	assert.Equal(t, []string{"ai", "fintech"}, inv.InvestmentFocus)
}

func TestParseProfileJSONLDAndHeadingFallback(t *testing.T) {
	inv, err := ParseProfile(`<html><head><script type="application/ld+json">
		{"@type": "Person", "name": "Sam Lee", "jobTitle": "Principal",
		 "worksFor": [{"name": "Seed Fund"}], "address": {"addressLocality": "Boston"}}
	</script></head><body></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Sam Lee", inv.Name)
	assert.Equal(t, "Principal", inv.Title)
	assert.Equal(t, "Seed Fund", inv.Company)
	assert.Equal(t, "Boston", inv.Location)

	inv, err = ParseProfile(`<html><body><h1> Alex Kim </h1></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Alex Kim", inv.Name)
}

func TestFromSearchResult(t *testing.T) {
	s := NewLinkedInScraper(LinkedInOptions{}, logger.NewNop())

	inv := s.FromSearchResult(model.SearchResult{
		Title:   "John Roe - Angel Investor - Roe Capital | LinkedIn",
		URL:     "https://www.linkedin.com/in/john-roe",
		Snippet: "Angel investor at Roe Capital · Austin, Texas · healthcare and biotech",
	})
	require.NotNil(t, inv)
	assert.Equal(t, "John Roe", inv.Name)
	assert.Equal(t, "Angel Investor", inv.Title)
	assert.Equal(t, "Roe Capital", inv.Company)
	assert.Equal(t, "https://www.linkedin.com/in/john-roe", inv.ProfileURL)
	assert.Equal(t, []string{"health"}, inv.InvestmentFocus)

	assert.Nil(t, s.FromSearchResult(model.SearchResult{Title: "  "}))
}

func TestFromURL(t *testing.T) {
	inv := FromURL("https://www.linkedin.com/in/mary-ann-smith-4b2a91/")
	require.NotNil(t, inv)
	assert.Equal(t, "Mary Ann Smith", inv.Name)

	assert.Nil(t, FromURL("https://example.com/about"))
}

func TestEnrichFetchesOnceAndMerges(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, profileHTML)
	}))
	defer srv.Close()

	s := NewLinkedInScraper(LinkedInOptions{}, logger.NewNop())
	require.NoError(t, s.Initialize(context.Background()))

	url := srv.URL + "/www.linkedin.com/in/jane-doe"
	base := &model.Investor{Name: "Jane Doe", ProfileURL: url, Source: "linkedin", InvestmentFocus: []string{"saas"}}

	got, err := s.Enrich(context.Background(), base)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ventures", got.Company)
	assert.Equal(t, "linkedin_enriched", got.Source)
	assert.True(t, got.Enriched)
	assert.Equal(t, []string{"saas", "ai", "fintech"}, got.InvestmentFocus)
	assert.Empty(t, base.Company, "input must not be mutated")

	_, err = s.Enrich(context.Background(), base)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestEnrichFailureReturnsInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewLinkedInScraper(LinkedInOptions{}, logger.NewNop())
	require.NoError(t, s.Initialize(context.Background()))

	base := &model.Investor{Name: "Jane", ProfileURL: srv.URL + "/linkedin.com/in/jane"}
	got, err := s.Enrich(context.Background(), base)
	require.Error(t, err)
	assert.Same(t, base, got)
}
