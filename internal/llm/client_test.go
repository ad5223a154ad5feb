package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/investor-finder/internal/apperr"
)

func TestMergeTurns(t *testing.T) {
	got := mergeTurns([]ChatMessage{
		{Role: "system", Content: "ignored"},
		{Role: "user", Content: "a"},
		{Role: "user", Content: "b"},
		{Role: "assistant", Content: "  "},
		{Role: "assistant", Content: "c"},
	})

	assert.Equal(t, []ChatMessage{
		{Role: "user", Content: "a\n\nb"},
		{Role: "assistant", Content: "c"},
	}, got)
}

func TestRegisterBuiltins(t *testing.T) {
	reg := NewRegistry()
	Register(reg, map[Provider]Options{
		ProviderGemini: {APIKey: "g-key"},
	})

	assert.Equal(t, Providers, reg.Names())

	client, err := reg.Resolve(context.Background(), ProviderGemini)
	require.NoError(t, err)
	assert.Equal(t, "gemini", client.Name())

	// Registered but unconfigured providers fail at initialization.
	_, err = reg.Resolve(context.Background(), ProviderOpenAI)
	require.Error(t, err)
	assert.Equal(t, apperr.KindProviderCallFailure, apperr.KindOf(err))

	_, err = reg.Resolve(context.Background(), Provider("mistral"))
	assert.Equal(t, apperr.KindProviderNotFound, apperr.KindOf(err))
}
