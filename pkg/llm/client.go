package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/sashabaranov/go-openai"

	"github.com/umputun/keyscope/pkg/config"
	"github.com/umputun/keyscope/pkg/domain"
)

// Client extracts keywords through one OpenAI-compatible chat endpoint.
// Each configured provider gets its own Client, the scheduler runs them
// concurrently against a shared task queue.
type Client struct {
	name         string
	model        string
	jsonMode     bool
	timeout      time.Duration
	temperature  float64
	maxTokens    int
	systemPrompt string

	client *openai.Client

	maxAttempts    int
	transientPause time.Duration
}

// NewClient creates a provider client from its config entry and the shared
// extraction settings.
func NewClient(pc config.Provider, ec config.ExtractionConfig) *Client {
	cc := openai.DefaultConfig(pc.APIKey)
	if pc.Endpoint != "" {
		cc.BaseURL = pc.Endpoint
	}

	systemPrompt := ec.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	timeout := ec.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		name:           pc.Name,
		model:          pc.Model,
		jsonMode:       pc.JSONMode,
		timeout:        timeout,
		temperature:    ec.Temperature,
		maxTokens:      ec.MaxTokens,
		systemPrompt:   systemPrompt,
		client:         openai.NewClientWithConfig(cc),
		maxAttempts:    3,
		transientPause: time.Second,
	}
}

// Name returns the provider identifier used in logs, stats and reports.
func (c *Client) Name() string { return c.name }

// Extract runs one extraction attempt for the item. Transient failures are
// retried in place a couple of times, rate limits and everything else
// surface immediately so the caller can reroute the task. A response that
// parses to nothing comes back as ErrNoKeywords.
func (c *Client) Extract(ctx context.Context, item domain.Item, exclusions []string) (*domain.ExtractionResult, error) {
	start := time.Now()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: float32(c.temperature),
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(item, exclusions)},
		},
	}
	if c.jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	var content string
	for attempt := 1; ; attempt++ {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateChatCompletion(cctx, req)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			werr := classifyProviderErr(c.name, err)
			if Classify(werr) == FailureTransient && attempt < c.maxAttempts {
				lgr.Printf("[WARN] %s attempt %d for %q failed: %v, retrying", c.name, attempt, item.Name, werr)
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(c.transientPause):
				}
				continue
			}
			return nil, werr
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("%s: empty response for %q", c.name, item.Name)
		}
		content = resp.Choices[0].Message.Content
		break
	}

	keywords := ParseResponse(content)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%s: %w", c.name, ErrNoKeywords)
	}

	return &domain.ExtractionResult{
		ItemURL:  item.URL,
		ItemName: item.Name,
		Provider: c.name,
		Keywords: keywords,
		Elapsed:  time.Since(start),
	}, nil
}
