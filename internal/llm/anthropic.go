package llm

import (
	"context"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient is the Anthropic LLM client.
type AnthropicClient struct {
	opts   Options
	client *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client. The SDK client is built
// by Initialize.
func NewAnthropicClient(opts Options) *AnthropicClient {
	if opts.Model == "" {
		opts.Model = "claude-3-sonnet-20240229"
	}
	return &AnthropicClient{opts: opts}
}

// Name returns the provider name.
func (c *AnthropicClient) Name() string {
	return string(ProviderAnthropic)
}

// Models returns available models.
func (c *AnthropicClient) Models() []string {
	return []string{
		"claude-3-5-sonnet-20241022",
		"claude-3-5-haiku-20241022",
		"claude-3-opus-20240229",
		"claude-3-sonnet-20240229",
		"claude-3-haiku-20240307",
	}
}

// Initialize builds the SDK client.
func (c *AnthropicClient) Initialize(context.Context) error {
	if c.opts.APIKey == "" {
		return errMissingAPIKey
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(c.opts.APIKey)}
	if c.opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(c.opts.BaseURL))
	}
	client := anthropic.NewClient(reqOpts...)
	c.client = &client
	return nil
}

// Cleanup releases the SDK client.
func (c *AnthropicClient) Cleanup(context.Context) error {
	c.client = nil
	return nil
}

func (c *AnthropicClient) buildParams(req *CompletionRequest) anthropic.MessageNewParams {
	model := req.Model
	if model == "" {
		model = c.opts.Model
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	turns := mergeTurns(req.Messages)
	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, msg := range turns {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	return params
}

// Complete sends a completion request.
func (c *AnthropicClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if c.client == nil {
		return nil, errMissingAPIKey
	}
	start := time.Now()

	resp, err := c.client.Messages.New(ctx, c.buildParams(req))
	if err != nil {
		return nil, err
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &CompletionResponse{
		Content:    content.String(),
		Model:      string(resp.Model),
		TokensIn:   int(resp.Usage.InputTokens),
		TokensOut:  int(resp.Usage.OutputTokens),
		StopReason: string(resp.StopReason),
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// CompleteStream sends a streaming completion request.
func (c *AnthropicClient) CompleteStream(ctx context.Context, req *CompletionRequest, callback StreamCallback) (*CompletionResponse, error) {
	if c.client == nil {
		return nil, errMissingAPIKey
	}
	start := time.Now()

	params := c.buildParams(req)
	stream := c.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	var message anthropic.Message
	var content strings.Builder
	index := 0

	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			return nil, err
		}

		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				content.WriteString(delta.Text)
				if err := callback(delta.Text, index); err != nil {
					return nil, err
				}
				index++
			}
		}
	}

	if err := stream.Err(); err != nil {
		return nil, err
	}

	return &CompletionResponse{
		Content:    content.String(),
		Model:      string(params.Model),
		TokensIn:   int(message.Usage.InputTokens),
		TokensOut:  int(message.Usage.OutputTokens),
		StopReason: string(message.StopReason),
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
