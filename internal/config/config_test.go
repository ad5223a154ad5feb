package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, []string{"gemini", "openai", "anthropic"}, cfg.LLMFallbackOrder)
	assert.Equal(t, 300*time.Second, cfg.ProviderCooldown)
	assert.Equal(t, 60*time.Minute, cfg.JWTExpiration)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.Equal(t, 200*time.Millisecond, cfg.ScrapeDelay)
	assert.False(t, cfg.SearchConfigured())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_FALLBACK_ORDER", " OpenAI, anthropic ,,")
	t.Setenv("PROVIDER_COOLDOWN", "45")
	t.Setenv("SCRAPE_DELAY", "1s")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("GOOGLE_SEARCH_API_KEY", "key")
	t.Setenv("GOOGLE_SEARCH_ENGINE_ID", "cx")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := Load()

	assert.Equal(t, []string{"openai", "anthropic"}, cfg.LLMFallbackOrder)
	assert.Equal(t, 45*time.Second, cfg.ProviderCooldown)
	assert.Equal(t, time.Second, cfg.ScrapeDelay)
	assert.InDelta(t, 0.2, cfg.LLMTemperature, 1e-9)
	assert.True(t, cfg.SearchConfigured())
	assert.Equal(t, "sk-test", cfg.LLMAPIKey("openai"))
	assert.Empty(t, cfg.LLMAPIKey("unknown"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "development defaults", mutate: func(c *Config) { c.Env = "development" }},
		{name: "short secret in production", mutate: func(c *Config) { c.Env = "production"; c.JWTSecret = "short" }, wantErr: true},
		{name: "empty fallback order", mutate: func(c *Config) { c.Env = "development"; c.LLMFallbackOrder = nil }, wantErr: true},
		{name: "zero page size", mutate: func(c *Config) { c.Env = "development"; c.PageSize = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
