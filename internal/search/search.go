// Package search provides web search providers used to discover investors.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/internal/provider"
)

// Client is the interface for search providers.
type Client interface {
	provider.Lifecycle

	// Name returns the provider name.
	Name() string

	// Search runs one query and returns at most n results.
	Search(ctx context.Context, query string, n int) ([]model.SearchResult, error)

	// SearchInvestors runs the investor query set for q and returns at most n
	// unique profile results.
	SearchInvestors(ctx context.Context, q model.InvestorQuery, n int) ([]model.SearchResult, error)
}

// Provider is the type of search provider.
type Provider string

const (
	ProviderGoogle Provider = "google"
)

// Registry resolves search clients by provider.
type Registry = provider.Registry[Provider, Client]

// NewRegistry creates an empty search registry.
func NewRegistry() *Registry {
	return provider.NewRegistry[Provider, Client](provider.CategorySearch)
}

// DefaultLocation is assumed when a message names no location.
const DefaultLocation = "United States"

// InvestorQueries expands an investor query into the web search queries run
// for it, most specific first.
func InvestorQueries(q model.InvestorQuery) []string {
	sectors := strings.Join(q.Sectors, " OR ")
	location := q.Location
	if location == "" {
		location = DefaultLocation
	}
	loc := fmt.Sprintf("%q", location)

	stage := ""
	if q.Stage != "" {
		stage = " " + q.Stage
	}

	return []string{
		fmt.Sprintf(`site:linkedin.com/in/ investor %s%s partner Silicon Valley OR "San Francisco" OR "New York"`, sectors, stage),
		fmt.Sprintf(`site:linkedin.com/in/ "venture capital" %s%s %s`, sectors, stage, loc),
		fmt.Sprintf(`site:linkedin.com/in/ "managing partner" OR "general partner" VC %s %s`, sectors, loc),
		fmt.Sprintf(`site:linkedin.com/in/ "angel investor" %s%s %s`, sectors, stage, loc),
		fmt.Sprintf(`site:linkedin.com/in/ "investment director" OR "principal" venture %s %s`, sectors, loc),
		fmt.Sprintf(`site:linkedin.com/in/ VC partner %s "Menlo Park" OR "Palo Alto" OR "Boston"`, sectors),
		fmt.Sprintf(`site:linkedin.com/in/ seed investor %s "Los Angeles" OR "Austin" OR "Seattle"`, sectors),
		fmt.Sprintf(`"partner" "venture capital" %s investor portfolio %s`, sectors, loc),
		fmt.Sprintf(`VC fund %s "managing director" OR "partner" %s`, sectors, loc),
		fmt.Sprintf(`site:crunchbase.com/person investor %s %s`, sectors, loc),
		fmt.Sprintf(`site:angel.co investor %s %s`, sectors, loc),
	}
}

// IsContentPage reports whether url points at a post or article rather than a
// profile.
func IsContentPage(url string) bool {
	return strings.Contains(url, "/posts/") || strings.Contains(url, "/pulse/")
}
