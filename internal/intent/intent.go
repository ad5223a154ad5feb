// Package intent extracts search intent from chat messages: whether to search,
// which sectors, stage and location, and whether the user wants another page.
//
// Matching is case-insensitive on whole words, so "ai" matches "AI startups"
// but not "said".
package intent

import (
	"regexp"
	"strings"
	"sync"
)

type group struct {
	name     string
	keywords []string
}

var sectors = []group{
	{"healthcare", []string{"health", "healthcare", "medical", "biotech", "medtech", "pharma", "healthtech"}},
	{"ecommerce", []string{"ecommerce", "e-commerce", "retail", "marketplace", "dtc", "direct to consumer"}},
	{"ai", []string{"ai", "artificial intelligence", "machine learning", "ml", "deep learning", "llm", "generative ai"}},
	{"fintech", []string{"fintech", "finance", "payment", "payments", "banking", "neobank", "defi", "crypto", "blockchain"}},
	{"edtech", []string{"edtech", "education", "learning", "online education", "e-learning"}},
	{"saas", []string{"saas", "software", "b2b", "enterprise", "cloud", "platform"}},
	{"climate", []string{"climate", "cleantech", "sustainability", "green", "renewable", "carbon"}},
	{"gaming", []string{"gaming", "game", "games", "entertainment", "esports", "metaverse"}},
	{"foodtech", []string{"food", "foodtech", "agtech", "agriculture", "delivery"}},
	{"logistics", []string{"logistics", "supply chain", "shipping", "freight", "warehouse"}},
	{"proptech", []string{"proptech", "real estate", "property", "housing"}},
	{"cybersecurity", []string{"cybersecurity", "security", "infosec", "privacy"}},
	{"robotics", []string{"robotics", "automation", "manufacturing", "hardware"}},
}

// focusAreas is the narrower table applied to profile text.
var focusAreas = []group{
	{"health", []string{"health", "healthcare", "biotech", "medtech", "medical"}},
	{"ai", []string{"ai", "artificial intelligence", "machine learning", "ml", "deep learning"}},
	{"fintech", []string{"fintech", "finance", "banking", "payments", "crypto", "blockchain"}},
	{"e-commerce", []string{"e-commerce", "ecommerce", "retail", "marketplace", "d2c"}},
	{"saas", []string{"saas", "software", "b2b", "enterprise"}},
	{"edtech", []string{"edtech", "education", "learning"}},
	{"cleantech", []string{"climate", "cleantech", "sustainability", "green", "energy"}},
	{"gaming", []string{"gaming", "games", "esports"}},
	{"mobility", []string{"mobility", "transportation", "automotive", "ev"}},
	{"foodtech", []string{"food", "foodtech", "agtech", "agriculture"}},
}

var stages = []group{
	{"pre-seed", []string{"pre-seed", "preseed", "pre seed"}},
	{"seed", []string{"seed"}},
	{"series a", []string{"series a"}},
	{"series b", []string{"series b"}},
	{"series c", []string{"series c", "growth stage", "late stage"}},
}

var locations = []group{
	{"San Francisco", []string{"san francisco", "sf", "bay area", "silicon valley"}},
	{"New York", []string{"new york", "nyc", "manhattan", "brooklyn"}},
	{"Boston", []string{"boston", "cambridge ma"}},
	{"Los Angeles", []string{"los angeles"}},
	{"Austin", []string{"austin", "texas"}},
	{"Seattle", []string{"seattle"}},
	{"Miami", []string{"miami", "florida"}},
	{"Chicago", []string{"chicago"}},
	{"London", []string{"london", "uk", "united kingdom"}},
	{"Europe", []string{"europe", "european"}},
	{"India", []string{"india", "bangalore", "bengaluru", "mumbai"}},
	{"Canada", []string{"canada", "toronto", "vancouver"}},
	{"United States", []string{"united states", "usa", "us-based", "america"}},
}

var searchTriggers = []string{
	"investor", "investors", "investment", "invest", "funding", "capital",
	"raise", "raising", "find", "search", "look for", "looking for",
	"startup", "venture", "vc", "vcs", "angel", "angels",
	"seed", "series a", "series b",
}

var paginationTriggers = []string{
	"more", "next", "continue", "show more", "additional", "other investors",
	"remaining", "next 10", "more investors",
}

// DefaultSectors is used when a message names no sector.
var DefaultSectors = []string{"startup", "technology"}

var (
	patternMu sync.Mutex
	patterns  = map[string]*regexp.Regexp{}
)

func pattern(phrase string) *regexp.Regexp {
	patternMu.Lock()
	defer patternMu.Unlock()
	if re, ok := patterns[phrase]; ok {
		return re
	}
	re := regexp.MustCompile(`(^|[^a-z0-9])` + regexp.QuoteMeta(phrase) + `($|[^a-z0-9])`)
	patterns[phrase] = re
	return re
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if pattern(p).MatchString(lower) {
			return true
		}
	}
	return false
}

func matchGroups(text string, groups []group, limit int) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, g := range groups {
		if containsAny(lower, g.keywords) {
			out = append(out, g.name)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

// Sectors returns the sectors named in text in table order. The result is
// empty when none match.
func Sectors(text string) []string {
	return matchGroups(text, sectors, 0)
}

// SectorsOrDefault returns Sectors(text), or DefaultSectors when empty.
func SectorsOrDefault(text string) []string {
	if s := Sectors(text); len(s) > 0 {
		return s
	}
	out := make([]string, len(DefaultSectors))
	copy(out, DefaultSectors)
	return out
}

// FocusAreas returns at most 5 investment focus areas found in profile text.
func FocusAreas(text string) []string {
	return matchGroups(text, focusAreas, 5)
}

// Stage returns the first funding stage named in text, or "".
func Stage(text string) string {
	// pre-seed precedes seed in the table; "pre-seed" also matches "seed".
	lower := strings.ToLower(text)
	for _, g := range stages {
		if containsAny(lower, g.keywords) {
			return g.name
		}
	}
	return ""
}

// Location returns the first location named in text, or "".
func Location(text string) string {
	if m := matchGroups(text, locations, 1); len(m) > 0 {
		return m[0]
	}
	return ""
}

// ShouldSearch reports whether text asks for investors: a search word, a
// sector keyword or a location keyword is present.
func ShouldSearch(text string) bool {
	lower := strings.ToLower(text)
	if containsAny(lower, searchTriggers) {
		return true
	}
	return len(Sectors(text)) > 0 || Location(text) != ""
}

// WantsNextPage reports whether text asks to see more of the investors
// already found.
func WantsNextPage(text string) bool {
	return containsAny(strings.ToLower(text), paginationTriggers)
}

// MergeSectors appends new sectors to existing ones, keeping first-seen order.
func MergeSectors(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(added))
	out := make([]string, 0, len(existing)+len(added))
	for _, list := range [][]string{existing, added} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
