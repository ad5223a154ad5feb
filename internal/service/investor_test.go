package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/investor-finder/internal/events"
	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/internal/scraper"
	"github.com/capitalize-ai/investor-finder/internal/search"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
)

func newInvestorService(t *testing.T, fs *fakeSearch, bus events.Publisher) *InvestorService {
	t.Helper()
	log := logger.NewNop()
	searches := search.NewRegistry()
	searches.Register(search.ProviderGoogle, func(context.Context) (search.Client, error) {
		return fs, nil
	})
	scrapers := scraper.NewRegistry()
	scraper.Register(scrapers, scraper.LinkedInOptions{}, log)
	return NewInvestorService(searches, scrapers, bus, InvestorOptions{}, log)
}

func TestFindClassifiesResults(t *testing.T) {
	fs := &fakeSearch{results: []model.SearchResult{
		{Title: "Jane Doe - General Partner | LinkedIn", URL: "https://www.linkedin.com/in/jane-doe", Snippet: "General Partner at Acme Ventures. Based in Boston"},
		{Title: "Acme Ventures | LinkedIn", URL: "https://www.linkedin.com/company/acme-ventures", Snippet: "Seed fund"},
		{Title: "John Roe - Investor | Crunchbase", URL: "https://www.crunchbase.com/person/john-roe"},
		{Title: "Ana Lee - Angel | Wellfound", URL: "https://wellfound.com/u/ana-lee"},
		{Title: "Sam Poe - Blue Fund", URL: "https://example.com/sam"},
		{Title: "Blue Capital - Portfolio", URL: "https://example.com/blue"},
		{Title: "No separator here", URL: "https://example.com/none"},
		{Title: "JANE DOE - duplicate", URL: "https://example.com/jane"},
	}}
	s := newInvestorService(t, fs, events.Discard{})

	found, results, err := s.Find(context.Background(), "c1", model.InvestorQuery{Sectors: []string{"fintech"}})
	require.NoError(t, err)
	assert.Len(t, results, 8)
	require.Len(t, found, 5)

	assert.Equal(t, "Jane Doe", found[0].Name)
	assert.Equal(t, "General Partner", found[0].Title)
	assert.Equal(t, "Acme Ventures", found[0].Company)
	assert.Equal(t, "Boston", found[0].Location)
	assert.Equal(t, "linkedin", found[0].Source)

	assert.Equal(t, "Acme Ventures", found[1].Name)
	assert.Equal(t, "Acme Ventures", found[1].Company)

	assert.Equal(t, "John Roe", found[2].Name)
	assert.Equal(t, "crunchbase", found[2].Source)

	assert.Equal(t, "Ana Lee", found[3].Name)
	assert.Equal(t, "angellist", found[3].Source)

	assert.Equal(t, "Sam Poe", found[4].Name)
	assert.Equal(t, "Blue Fund", found[4].Company)
	assert.Equal(t, "web_search", found[4].Source)

	require.Len(t, fs.queries, 1)
	assert.Equal(t, search.DefaultLocation, fs.queries[0].Location)
}

func TestFindPublishesSearchEvents(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()
	ch, cancel := bus.Subscribe(16, events.SearchStarted, events.SearchFailed)
	defer cancel()

	s := newInvestorService(t, &fakeSearch{err: errProviderDown}, bus)
	_, _, err := s.Find(context.Background(), "c1", model.InvestorQuery{Sectors: []string{"ai"}})
	require.ErrorIs(t, err, errProviderDown)

	started := <-ch
	assert.Equal(t, events.SearchStarted, started.Type)
	failed := <-ch
	assert.Equal(t, events.SearchFailed, failed.Type)
	assert.Equal(t, "google", failed.Data["provider"])
	assert.Equal(t, "c1", failed.ConversationID)
}
