package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/anaskhan96/soup"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/capitalize-ai/investor-finder/internal/intent"
	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
	"github.com/capitalize-ai/investor-finder/pkg/metrics"
)

const maxPageBytes = 2 << 20

var (
	slugPattern    = regexp.MustCompile(`linkedin\.com/in/([^/?#]+)`)
	companyPattern = regexp.MustCompile(` at ([^.·\n|]+)`)

	locationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:based in|located in|location:)\s+([^.·\n]+)`),
		regexp.MustCompile(`([A-Z][a-z]+(?:,\s*[A-Z][a-z]+)?(?:\s+Area)?)\s*·`),
	}
)

// LinkedInOptions configures the LinkedIn scraper.
type LinkedInOptions struct {
	// Delay is the minimum spacing between page fetches.
	Delay     time.Duration
	Timeout   time.Duration
	UserAgent string
}

// LinkedInScraper reads public LinkedIn profile pages.
type LinkedInScraper struct {
	opts    LinkedInOptions
	http    *http.Client
	limiter *rate.Limiter
	log     *logger.Logger

	mu    sync.Mutex
	pages map[string]*model.Investor
}

// NewLinkedInScraper creates a new LinkedIn scraper.
func NewLinkedInScraper(opts LinkedInOptions, log *logger.Logger) *LinkedInScraper {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; InvestorFinder/1.0)"
	}
	return &LinkedInScraper{opts: opts, log: log.Named("scraper.linkedin")}
}

// Name returns the provider name.
func (s *LinkedInScraper) Name() string {
	return string(ProviderLinkedIn)
}

// Initialize prepares the HTTP client and fetch limiter.
func (s *LinkedInScraper) Initialize(context.Context) error {
	s.http = &http.Client{Timeout: s.opts.Timeout}
	limit := rate.Inf
	if s.opts.Delay > 0 {
		limit = rate.Every(s.opts.Delay)
	}
	s.limiter = rate.NewLimiter(limit, 1)
	s.pages = make(map[string]*model.Investor)
	return nil
}

// Cleanup drops the page cache and idle connections.
func (s *LinkedInScraper) Cleanup(context.Context) error {
	s.mu.Lock()
	s.pages = make(map[string]*model.Investor)
	s.mu.Unlock()
	if s.http != nil {
		s.http.CloseIdleConnections()
	}
	return nil
}

// CanHandle reports whether url is a LinkedIn person profile.
func (s *LinkedInScraper) CanHandle(url string) bool {
	return strings.Contains(url, "linkedin.com/in/")
}

// FromSearchResult parses a "Name - Title | LinkedIn" search hit.
func (s *LinkedInScraper) FromSearchResult(result model.SearchResult) *model.Investor {
	name, title := splitProfileTitle(result.Title)
	if name == "" {
		return nil
	}

	inv := &model.Investor{
		Name:       name,
		Title:      title,
		ProfileURL: result.URL,
		Source:     "linkedin",
	}
	if snippet := strings.TrimSpace(result.Snippet); snippet != "" {
		inv.Bio = truncate(snippet, 500)
		inv.Company = extractCompany(snippet)
		inv.Location = extractLocation(snippet)
		inv.InvestmentFocus = intent.FocusAreas(snippet)
	}
	return inv
}

// FromURL derives an investor from the profile URL slug alone.
func FromURL(url string) *model.Investor {
	m := slugPattern.FindStringSubmatch(url)
	if m == nil {
		return nil
	}
	var words []string
	for _, w := range strings.Split(m[1], "-") {
		if w == "" || strings.IndexFunc(w, unicode.IsDigit) >= 0 {
			continue
		}
		words = append(words, titleWord(w))
	}
	if len(words) == 0 {
		return nil
	}
	return &model.Investor{
		Name:       strings.Join(words, " "),
		ProfileURL: url,
		Source:     "linkedin",
	}
}

// ScrapeProfile fetches and parses a profile page, falling back to the URL
// slug when the page carries no usable name.
func (s *LinkedInScraper) ScrapeProfile(ctx context.Context, url string) (*model.Investor, error) {
	page, err := s.page(ctx, url)
	if err != nil {
		if inv := FromURL(url); inv != nil {
			return inv, nil
		}
		return nil, err
	}
	if page.Name == "" {
		if inv := FromURL(url); inv != nil {
			page.Name = inv.Name
		} else {
			return nil, fmt.Errorf("no profile name found at %s", url)
		}
	}
	inv := *page
	inv.ProfileURL = url
	inv.Source = "linkedin"
	return &inv, nil
}

// Enrich fills empty fields of inv from its profile page. A longer bio wins
// and focus areas are merged.
func (s *LinkedInScraper) Enrich(ctx context.Context, inv *model.Investor) (*model.Investor, error) {
	if inv == nil || !s.CanHandle(inv.ProfileURL) {
		return inv, nil
	}
	page, err := s.page(ctx, inv.ProfileURL)
	if err != nil {
		return inv, err
	}
	return merge(inv, page), nil
}

// page returns the parsed profile at url, fetching it at most once.
func (s *LinkedInScraper) page(ctx context.Context, url string) (*model.Investor, error) {
	s.mu.Lock()
	cached, ok := s.pages[url]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	html, err := s.fetch(ctx, url)
	if err != nil {
		metrics.ScrapeRequestsTotal.WithLabelValues(s.Name(), "error").Inc()
		return nil, err
	}
	metrics.ScrapeRequestsTotal.WithLabelValues(s.Name(), "ok").Inc()

	parsed, err := ParseProfile(html)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pages[url] = parsed
	s.mu.Unlock()
	return parsed, nil
}

func (s *LinkedInScraper) fetch(ctx context.Context, url string) (string, error) {
	if s.http == nil {
		return "", errors.New("linkedin scraper not initialized")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Debug("profile fetch rejected", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}

// ParseProfile extracts investor fields from a public profile page. JSON-LD
// person data wins over Open Graph tags; the first h1 is the last resort for
// the name.
func ParseProfile(html string) (*model.Investor, error) {
	doc := soup.HTMLParse(html)
	if doc.Error != nil {
		return nil, fmt.Errorf("parse profile: %w", doc.Error)
	}

	inv := &model.Investor{}

	if meta := doc.Find("meta", "property", "og:title"); meta.Error == nil {
		inv.Name, inv.Title = splitProfileTitle(meta.Attrs()["content"])
	}

	if meta := doc.Find("meta", "property", "og:description"); meta.Error == nil {
		if desc := strings.TrimSpace(meta.Attrs()["content"]); desc != "" {
			inv.Bio = truncate(desc, 500)
			inv.Company = extractCompany(desc)
			inv.Location = extractLocation(desc)
			inv.InvestmentFocus = intent.FocusAreas(desc)
		}
	}

	if script := doc.Find("script", "type", "application/ld+json"); script.Error == nil {
		applyJSONLD(inv, script.FullText())
	}

	if inv.Name == "" {
		if h1 := doc.Find("h1"); h1.Error == nil {
			inv.Name = truncate(strings.TrimSpace(h1.FullText()), 100)
		}
	}
	return inv, nil
}

func applyJSONLD(inv *model.Investor, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !gjson.Valid(raw) {
		return
	}
	doc := gjson.Parse(raw)
	if doc.IsArray() {
		doc = doc.Get("0")
	}
	if !doc.IsObject() {
		return
	}
	if v := doc.Get("name").String(); v != "" {
		inv.Name = v
	}
	if v := doc.Get("jobTitle").String(); v != "" {
		inv.Title = v
	}
	worksFor := doc.Get("worksFor")
	if worksFor.IsArray() {
		worksFor = worksFor.Get("0")
	}
	if v := worksFor.Get("name").String(); v != "" {
		inv.Company = v
	}
	if v := doc.Get("address.addressLocality").String(); v != "" {
		inv.Location = v
	} else if v := doc.Get("address.addressRegion").String(); v != "" {
		inv.Location = v
	}
	if v := doc.Get("description").String(); len(v) > len(inv.Bio) {
		inv.Bio = truncate(v, 800)
		inv.InvestmentFocus = intent.MergeSectors(inv.InvestmentFocus, intent.FocusAreas(v))
	}
}

func merge(base, page *model.Investor) *model.Investor {
	out := *base
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&out.Name, page.Name)
	fill(&out.Title, page.Title)
	fill(&out.Company, page.Company)
	fill(&out.Location, page.Location)
	fill(&out.Email, page.Email)
	if len(page.Bio) > len(out.Bio) {
		out.Bio = page.Bio
	}
	focus := intent.MergeSectors(out.InvestmentFocus, page.InvestmentFocus)
	if len(focus) > 8 {
		focus = focus[:8]
	}
	out.InvestmentFocus = focus
	if out.Source == "" {
		out.Source = "linkedin"
	}
	if !strings.HasSuffix(out.Source, "_enriched") {
		out.Source += "_enriched"
	}
	out.Enriched = true
	return &out
}

// splitProfileTitle splits "Name - Title | LinkedIn".
func splitProfileTitle(raw string) (name, title string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	if before, after, ok := strings.Cut(raw, " - "); ok {
		title = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(after), "| LinkedIn"))
		if i := strings.Index(title, " - "); i >= 0 {
			title = title[:i]
		}
		return strings.TrimSpace(before), strings.TrimSpace(title)
	}
	if before, _, ok := strings.Cut(raw, " | "); ok {
		return strings.TrimSpace(before), ""
	}
	return strings.TrimSpace(strings.TrimSuffix(raw, "LinkedIn")), ""
}

func extractCompany(text string) string {
	if m := companyPattern.FindStringSubmatch(text); m != nil {
		return truncate(strings.TrimSpace(m[1]), 100)
	}
	return ""
}

func extractLocation(text string) string {
	for _, p := range locationPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return truncate(strings.TrimSpace(m[1]), 100)
		}
	}
	return ""
}

func titleWord(w string) string {
	r := []rune(strings.ToLower(w))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Register adds the LinkedIn scraper to reg.
func Register(reg *Registry, opts LinkedInOptions, log *logger.Logger) {
	reg.Register(ProviderLinkedIn, func(context.Context) (Client, error) {
		return NewLinkedInScraper(opts, log), nil
	})
}
