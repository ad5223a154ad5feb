package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient talks to the Gemini generateContent REST API.
type GeminiClient struct {
	opts Options
	http *http.Client
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(opts Options) *GeminiClient {
	if opts.Model == "" {
		opts.Model = "gemini-2.0-flash"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultGeminiBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &GeminiClient{opts: opts}
}

// Name returns the provider name.
func (c *GeminiClient) Name() string {
	return string(ProviderGemini)
}

// Models returns available models.
func (c *GeminiClient) Models() []string {
	return []string{
		"gemini-2.0-flash",
		"gemini-1.5-pro",
		"gemini-1.5-flash",
	}
}

// Initialize prepares the HTTP client.
func (c *GeminiClient) Initialize(context.Context) error {
	if c.opts.APIKey == "" {
		return errMissingAPIKey
	}
	// Streaming responses may outlive a flat client timeout; calls are bounded
	// by the caller's context instead.
	c.http = &http.Client{}
	return nil
}

// Cleanup closes idle connections.
func (c *GeminiClient) Cleanup(context.Context) error {
	if c.http != nil {
		c.http.CloseIdleConnections()
	}
	return nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  map[string]any  `json:"generationConfig"`
}

func (c *GeminiClient) buildBody(req *CompletionRequest) ([]byte, string, error) {
	model := req.Model
	if model == "" {
		model = c.opts.Model
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	body := geminiRequest{
		GenerationConfig: map[string]any{
			"temperature":     req.Temperature,
			"maxOutputTokens": maxTokens,
			"topK":            40,
			"topP":            0.9,
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	for _, m := range mergeTurns(req.Messages) {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		body.Contents = append(body.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	if len(body.Contents) == 0 {
		return nil, "", errors.New("gemini request has no content")
	}

	data, err := json.Marshal(body)
	return data, model, err
}

const googAPIKeyHeader = "x-goog-api-key"

func (c *GeminiClient) post(ctx context.Context, model, method string, query url.Values, body []byte) (*http.Response, error) {
	if c.http == nil {
		return nil, errMissingAPIKey
	}
	endpoint := fmt.Sprintf("%s/models/%s:%s", c.opts.BaseURL, url.PathEscape(model), method)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// The key travels in a header so transport errors, which quote the URL,
	// never carry it.
	httpReq.Header.Set(googAPIKeyHeader, c.opts.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini http error: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

// candidateText joins the text parts of the first candidate.
func candidateText(doc gjson.Result) string {
	var b strings.Builder
	for _, part := range doc.Get("candidates.0.content.parts").Array() {
		b.WriteString(part.Get("text").String())
	}
	return b.String()
}

// Complete sends a completion request.
func (c *GeminiClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	body, model, err := c.buildBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, model, "generateContent", url.Values{}, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini read error: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("gemini returned invalid JSON")
	}

	doc := gjson.ParseBytes(raw)
	content := candidateText(doc)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("gemini returned no text (finish reason %q)", doc.Get("candidates.0.finishReason").String())
	}

	return &CompletionResponse{
		Content:    content,
		Model:      model,
		TokensIn:   int(doc.Get("usageMetadata.promptTokenCount").Int()),
		TokensOut:  int(doc.Get("usageMetadata.candidatesTokenCount").Int()),
		StopReason: doc.Get("candidates.0.finishReason").String(),
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// CompleteStream sends a streaming completion request using server-sent events.
func (c *GeminiClient) CompleteStream(ctx context.Context, req *CompletionRequest, callback StreamCallback) (*CompletionResponse, error) {
	start := time.Now()

	body, model, err := c.buildBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, model, "streamGenerateContent", url.Values{"alt": {"sse"}}, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var content strings.Builder
	var stopReason string
	var tokensIn, tokensOut int
	index := 0

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || !gjson.Valid(payload) {
			continue
		}

		doc := gjson.Parse(payload)
		if chunk := candidateText(doc); chunk != "" {
			content.WriteString(chunk)
			if err := callback(chunk, index); err != nil {
				return nil, err
			}
			index++
		}
		if fr := doc.Get("candidates.0.finishReason").String(); fr != "" {
			stopReason = fr
		}
		if usage := doc.Get("usageMetadata"); usage.Exists() {
			tokensIn = int(usage.Get("promptTokenCount").Int())
			tokensOut = int(usage.Get("candidatesTokenCount").Int())
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("gemini stream read error: %w", err)
	}
	if index == 0 {
		return nil, fmt.Errorf("gemini stream returned no text (finish reason %q)", stopReason)
	}

	return &CompletionResponse{
		Content:    content.String(),
		Model:      model,
		TokensIn:   tokensIn,
		TokensOut:  tokensOut,
		StopReason: stopReason,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
