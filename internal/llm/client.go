// Package llm provides LLM client interfaces and implementations.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/capitalize-ai/investor-finder/internal/provider"
)

// StreamCallback is called for each chunk during streaming.
type StreamCallback func(token string, index int) error

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model       string
	System      string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// ChatMessage represents a chat message for LLM.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for LLM providers.
type Client interface {
	provider.Lifecycle

	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// CompleteStream sends a streaming completion request. The callback sees
	// chunks in the order the provider produced them.
	CompleteStream(ctx context.Context, req *CompletionRequest, callback StreamCallback) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string

	// Models returns available models.
	Models() []string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
)

// Providers lists every built-in LLM provider.
var Providers = []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic}

// Registry resolves LLM clients by provider.
type Registry = provider.Registry[Provider, Client]

// NewRegistry creates an empty LLM registry.
func NewRegistry() *Registry {
	return provider.NewRegistry[Provider, Client](provider.CategoryLLM)
}

// Options configures a client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewClient creates a new LLM client based on provider.
func NewClient(p Provider, opts Options) (Client, error) {
	switch p {
	case ProviderAnthropic:
		return NewAnthropicClient(opts), nil
	case ProviderOpenAI:
		return NewOpenAIClient(opts), nil
	case ProviderGemini:
		return NewGeminiClient(opts), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", p)
	}
}

// Register adds a factory for every built-in provider. Providers absent from
// opts are still registered and fail Initialize for lack of an API key.
func Register(reg *Registry, opts map[Provider]Options) {
	for _, p := range Providers {
		p, o := p, opts[p]
		reg.Register(p, func(context.Context) (Client, error) {
			return NewClient(p, o)
		})
	}
}

var errMissingAPIKey = fmt.Errorf("api key not configured")

// mergeTurns collapses consecutive messages from the same role and drops
// empty ones. Anthropic and Gemini reject non-alternating histories.
func mergeTurns(messages []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		content := strings.TrimSpace(m.Content)
		if content == "" || m.Role == "system" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Role == m.Role {
			out[n-1].Content += "\n\n" + content
			continue
		}
		out = append(out, ChatMessage{Role: m.Role, Content: content})
	}
	return out
}

func estimateTokens(text string) int {
	return len(text) / 4
}
