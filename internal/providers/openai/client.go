// Package openai adapts the OpenAI chat completions API to the worker's
// Provider interface.
package openai

import (
	"context"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"fitserver/internal/domain"
)

// Options configures the client. Only APIKey and Model are required.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Org     string
}

// Client issues chat completion requests. Safe for concurrent use.
type Client struct {
	api   *goopenai.Client
	model string
}

func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("openai: model is required")
	}
	cfg := goopenai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Org != "" {
		cfg.OrgID = opts.Org
	}
	return &Client{api: goopenai.NewClientWithConfig(cfg), model: opts.Model}, nil
}

// Model reports the configured model name, recorded alongside results.
func (c *Client) Model() string { return c.model }

// Generate sends the rendered prompt as the system message and the job's
// input payload as the user message, and returns the raw completion text.
// Failures are wrapped as provider errors so the dispatch loop retries them.
func (c *Client) Generate(ctx context.Context, systemPrompt, userContent string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: userContent},
		},
	})
	if err != nil {
		return "", &domain.ProviderError{Op: "chat_completion", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.ProviderError{Op: "chat_completion", Err: fmt.Errorf("empty choices in response")}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &domain.ProviderError{Op: "chat_completion", Err: fmt.Errorf("empty completion text")}
	}
	return text, nil
}
