package llm

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient is the OpenAI LLM client.
type OpenAIClient struct {
	opts   Options
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client. The SDK client is built by
// Initialize.
func NewOpenAIClient(opts Options) *OpenAIClient {
	if opts.Model == "" {
		opts.Model = "gpt-4"
	}
	return &OpenAIClient{opts: opts}
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return string(ProviderOpenAI)
}

// Models returns available models.
func (c *OpenAIClient) Models() []string {
	return []string{
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4-turbo",
		"gpt-4",
		"gpt-3.5-turbo",
	}
}

// Initialize builds the SDK client.
func (c *OpenAIClient) Initialize(context.Context) error {
	if c.opts.APIKey == "" {
		return errMissingAPIKey
	}
	cfg := openai.DefaultConfig(c.opts.APIKey)
	if c.opts.BaseURL != "" {
		cfg.BaseURL = c.opts.BaseURL
	}
	c.client = openai.NewClientWithConfig(cfg)
	return nil
}

// Cleanup releases the SDK client.
func (c *OpenAIClient) Cleanup(context.Context) error {
	c.client = nil
	return nil
}

func (c *OpenAIClient) buildRequest(req *CompletionRequest) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.opts.Model
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(req.Temperature),
	}
}

// Complete sends a completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if c.client == nil {
		return nil, errMissingAPIKey
	}
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(req))
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	return &CompletionResponse{
		Content:    resp.Choices[0].Message.Content,
		Model:      resp.Model,
		TokensIn:   resp.Usage.PromptTokens,
		TokensOut:  resp.Usage.CompletionTokens,
		StopReason: string(resp.Choices[0].FinishReason),
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// CompleteStream sends a streaming completion request.
func (c *OpenAIClient) CompleteStream(ctx context.Context, req *CompletionRequest, callback StreamCallback) (*CompletionResponse, error) {
	if c.client == nil {
		return nil, errMissingAPIKey
	}
	start := time.Now()

	request := c.buildRequest(req)
	request.Stream = true

	stream, err := c.client.CreateChatCompletionStream(ctx, request)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var content strings.Builder
	var stopReason string
	index := 0

	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(response.Choices) > 0 {
			delta := response.Choices[0].Delta.Content
			if delta != "" {
				content.WriteString(delta)
				if err := callback(delta, index); err != nil {
					return nil, err
				}
				index++
			}

			if response.Choices[0].FinishReason != "" {
				stopReason = string(response.Choices[0].FinishReason)
			}
		}
	}

	// Streaming responses carry no usage block; estimate from text length.
	promptLen := len(req.System)
	for _, m := range req.Messages {
		promptLen += len(m.Content)
	}

	return &CompletionResponse{
		Content:    content.String(),
		Model:      request.Model,
		TokensIn:   promptLen / 4,
		TokensOut:  estimateTokens(content.String()),
		StopReason: stopReason,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
