package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/capitalize-ai/investor-finder/internal/events"
	"github.com/capitalize-ai/investor-finder/internal/llm"
	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/internal/scraper"
	"github.com/capitalize-ai/investor-finder/internal/search"
	"github.com/capitalize-ai/investor-finder/internal/store"
	"github.com/capitalize-ai/investor-finder/internal/store/storetest"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
)

var errProviderDown = errors.New("provider down")

// fakeLLM is a scripted LLM client.
type fakeLLM struct {
	name   string
	reply  string
	chunks []string
	err    error
	// failAfter > 0 makes a stream fail after that many chunks.
	failAfter int

	calls   int
	lastReq *llm.CompletionRequest
}

func (f *fakeLLM) Initialize(context.Context) error { return nil }
func (f *fakeLLM) Cleanup(context.Context) error    { return nil }
func (f *fakeLLM) Name() string                     { return f.name }
func (f *fakeLLM) Models() []string                 { return []string{f.name + "-model"} }

func (f *fakeLLM) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.reply, Model: f.name + "-model", TokensIn: 10, TokensOut: 5}, nil
}

func (f *fakeLLM) CompleteStream(_ context.Context, req *llm.CompletionRequest, cb llm.StreamCallback) (*llm.CompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil && f.failAfter == 0 {
		return nil, f.err
	}
	var b strings.Builder
	for i, c := range f.chunks {
		if f.failAfter > 0 && i == f.failAfter {
			return nil, f.err
		}
		if err := cb(c, i); err != nil {
			return nil, err
		}
		b.WriteString(c)
	}
	return &llm.CompletionResponse{Content: b.String(), Model: f.name + "-model"}, nil
}

// fakeSearch returns canned results and counts calls.
type fakeSearch struct {
	results []model.SearchResult
	err     error

	calls   int
	queries []model.InvestorQuery
}

func (f *fakeSearch) Initialize(context.Context) error { return nil }
func (f *fakeSearch) Cleanup(context.Context) error    { return nil }
func (f *fakeSearch) Name() string                     { return "google" }

func (f *fakeSearch) Search(context.Context, string, int) ([]model.SearchResult, error) {
	return f.results, f.err
}

func (f *fakeSearch) SearchInvestors(_ context.Context, q model.InvestorQuery, _ int) ([]model.SearchResult, error) {
	f.calls++
	f.queries = append(f.queries, q)
	return f.results, f.err
}

// linkedInResults builds n distinct LinkedIn profile hits.
func linkedInResults(n int) []model.SearchResult {
	out := make([]model.SearchResult, n)
	for i := range out {
		out[i] = model.SearchResult{
			Title:   fmt.Sprintf("Investor %02d - Partner | LinkedIn", i+1),
			URL:     fmt.Sprintf("https://www.linkedin.com/in/investor-%02d", i+1),
			Snippet: "Partner at Example Ventures. Based in New York",
			Source:  "google",
		}
	}
	return out
}

type harness struct {
	chat      *ChatService
	store     *store.Store
	search    *fakeSearch
	cooldowns *Cooldowns
}

type harnessOptions struct {
	order        []string
	historyLimit int
}

func newHarness(t *testing.T, opts harnessOptions, fakes ...*fakeLLM) *harness {
	t.Helper()
	log := logger.NewNop()
	st := storetest.New(t)

	llms := llm.NewRegistry()
	for _, f := range fakes {
		f := f
		llms.Register(llm.Provider(f.name), func(context.Context) (llm.Client, error) {
			return f, nil
		})
	}

	fs := &fakeSearch{}
	searches := search.NewRegistry()
	searches.Register(search.ProviderGoogle, func(context.Context) (search.Client, error) {
		return fs, nil
	})
	scrapers := scraper.NewRegistry()
	scraper.Register(scrapers, scraper.LinkedInOptions{}, log)

	investors := NewInvestorService(searches, scrapers, events.Discard{}, InvestorOptions{MaxResults: 30}, log)
	cooldowns := NewCooldowns(5 * time.Minute)

	order := opts.order
	if order == nil {
		for _, f := range fakes {
			order = append(order, f.name)
		}
	}
	chat := NewChatService(st, llms, investors, cooldowns, events.Discard{}, ChatOptions{
		FallbackOrder: order,
		Timeout:       time.Second,
		HistoryLimit:  opts.historyLimit,
		PageSize:      10,
	}, log)

	return &harness{chat: chat, store: st, search: fs, cooldowns: cooldowns}
}
