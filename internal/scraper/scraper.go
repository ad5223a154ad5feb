// Package scraper turns search hits and profile pages into investor records.
package scraper

import (
	"context"

	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/internal/provider"
)

// Client is the interface for scraper providers.
type Client interface {
	provider.Lifecycle

	// Name returns the provider name.
	Name() string

	// CanHandle reports whether url is a profile this scraper understands.
	CanHandle(url string) bool

	// FromSearchResult builds an investor from a search hit without fetching
	// anything. It returns nil when no name can be derived.
	FromSearchResult(result model.SearchResult) *model.Investor

	// ScrapeProfile fetches and parses the profile at url.
	ScrapeProfile(ctx context.Context, url string) (*model.Investor, error)

	// Enrich fetches the investor's profile page and fills missing fields. On
	// failure the investor is returned unchanged along with the error.
	Enrich(ctx context.Context, inv *model.Investor) (*model.Investor, error)
}

// Provider is the type of scraper provider.
type Provider string

const (
	ProviderLinkedIn Provider = "linkedin"
)

// Registry resolves scraper clients by provider.
type Registry = provider.Registry[Provider, Client]

// NewRegistry creates an empty scraper registry.
func NewRegistry() *Registry {
	return provider.NewRegistry[Provider, Client](provider.CategoryScraper)
}
