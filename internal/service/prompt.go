package service

import (
	"fmt"
	"strings"

	"github.com/capitalize-ai/investor-finder/internal/llm"
	"github.com/capitalize-ai/investor-finder/internal/model"
)

const systemPrompt = `You are a concise, factual assistant that helps founders find startup investors.

Goals:
1. Work out the startup's sector, stage and location preference. Use the location the user gives; otherwise prefer US hubs, but never invent a location filter.
2. Present at most 10 investors per reply. When more are available, say how many remain and tell the user to ask for "more" to see the next page.
3. For each investor give name, title, company, location, investment focus, a bio of at most two sentences and the profile URL. Leave out fields that are unknown; never make them up.
4. Keep a professional, action-oriented tone with short paragraphs.
5. Reply in the language of the user's message. Keep investor data as it is.

Format investors as a numbered markdown list:
1. **Name**
   Title @ Company
   Location: city or region
   Focus: tag, tag
   Bio: one or two sentences
   Profile: URL`

const (
	maxPromptResults = 15
	maxSnippetLength = 150
	maxPromptBio     = 200
)

// promptContext is what the model is told about the conversation beyond its
// message history.
type promptContext struct {
	Sectors   []string
	Results   []model.SearchResult
	Investors []model.Investor
	Total     int64
	Page      int
	PageSize  int
	Paging    bool
	Exhausted bool
}

// buildSystemPrompt renders the system prompt followed by the conversation's
// search context.
func buildSystemPrompt(pc promptContext) string {
	var b strings.Builder
	b.WriteString(systemPrompt)

	if len(pc.Sectors) > 0 {
		fmt.Fprintf(&b, "\n\nSectors the user is interested in: %s", strings.Join(pc.Sectors, ", "))
	}
	if pc.Total > 0 {
		fmt.Fprintf(&b, "\nTotal investors found so far: %d", pc.Total)
	}

	if len(pc.Results) > 0 {
		results := pc.Results
		if len(results) > maxPromptResults {
			results = results[:maxPromptResults]
		}
		fmt.Fprintf(&b, "\n\nWeb search results (%d):", len(results))
		for _, r := range results {
			fmt.Fprintf(&b, "\n- %s: %s", r.Title, clip(r.Snippet, maxSnippetLength))
		}
	}

	switch {
	case pc.Exhausted:
		fmt.Fprintf(&b, "\n\nAll %d investors have already been shown. Offer to run a new search.", pc.Total)
	case len(pc.Investors) > 0:
		if pc.Paging {
			fmt.Fprintf(&b, "\n\nNext investors (page %d, %d on this page, %d total):", pc.Page+1, len(pc.Investors), pc.Total)
		} else {
			fmt.Fprintf(&b, "\n\nInvestors found (%d on this page, %d total):", len(pc.Investors), pc.Total)
		}
		for _, inv := range pc.Investors {
			writeInvestor(&b, inv)
		}
		shown := int64((pc.Page + 1) * pc.PageSize)
		if remaining := pc.Total - shown; remaining > 0 {
			fmt.Fprintf(&b, "\n\n%d more investors are available. If the user asks for more, the next page will be provided.", remaining)
		}
	}
	return b.String()
}

func writeInvestor(b *strings.Builder, inv model.Investor) {
	fmt.Fprintf(b, "\n### %s", inv.Name)
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(b, "\n   %s: %s", label, value)
		}
	}
	line("Title", inv.Title)
	line("Company", inv.Company)
	line("Location", inv.Location)
	line("Bio", clip(inv.Bio, maxPromptBio))
	line("Investment Focus", strings.Join(inv.InvestmentFocus, ", "))
	line("Profile", inv.ProfileURL)
}

// historyMessages converts stored messages into chat turns for the model.
func historyMessages(msgs []model.Message) []llm.ChatMessage {
	out := make([]llm.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == model.RoleSystem {
			continue
		}
		out = append(out, llm.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// clip shortens s to n runes, marking the cut with "...".
func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
