package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectors(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Find fintech investors", []string{"fintech"}},
		{"AI and healthcare startups", []string{"healthcare", "ai"}},
		{"She said hello", nil},
		{"Generative AI for e-commerce", []string{"ecommerce", "ai"}},
		{"supply chain robotics", []string{"logistics", "robotics"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sectors(tt.text), tt.text)
	}
}

func TestSectorsOrDefault(t *testing.T) {
	assert.Equal(t, []string{"startup", "technology"}, SectorsOrDefault("who can help me?"))

	got := SectorsOrDefault("nothing here")
	got[0] = "mutated"
	assert.Equal(t, "startup", DefaultSectors[0])
}

func TestShouldSearch(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"I'm raising a seed round", true},
		{"climate tech", true},
		{"anyone in Boston?", true},
		{"hello there", false},
		{"thanks, that was helpful", false},
		{"what does a term sheet look like", false},
	}
	for _, tt := range tests {
		if got := ShouldSearch(tt.text); got != tt.want {
			t.Errorf("ShouldSearch(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestWantsNextPage(t *testing.T) {
	assert.True(t, WantsNextPage("show more"))
	assert.True(t, WantsNextPage("Next 10 please"))
	assert.False(t, WantsNextPage("Find fintech investors"))
	assert.False(t, WantsNextPage("furthermore"))
}

func TestStageAndLocation(t *testing.T) {
	assert.Equal(t, "pre-seed", Stage("raising a pre-seed round"))
	assert.Equal(t, "seed", Stage("seed investors"))
	assert.Equal(t, "series a", Stage("Series A fintech"))
	assert.Equal(t, "", Stage("investors"))

	assert.Equal(t, "San Francisco", Location("VCs in the Bay Area"))
	assert.Equal(t, "New York", Location("NYC angels"))
	assert.Equal(t, "", Location("anywhere"))
}

func TestFocusAreasLimit(t *testing.T) {
	got := FocusAreas("Investor in health, AI, fintech, retail, SaaS, education and gaming")
	assert.Len(t, got, 5)
	assert.Equal(t, []string{"health", "ai", "fintech", "e-commerce", "saas"}, got)
}

func TestMergeSectors(t *testing.T) {
	assert.Equal(t, []string{"ai", "fintech", "saas"}, MergeSectors([]string{"ai", "fintech"}, []string{"fintech", "saas"}))
}
