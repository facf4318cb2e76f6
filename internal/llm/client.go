package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"swesmith/internal/errs"
	"swesmith/internal/logging"
)

// Client generates text completions for the Bug Generators' lm-modify/
// lm-rewrite prompts and the Issue Generator's problem-statement prompts,
// rotating API keys and respecting per-key rate limits.
type Client struct {
	keys    *KeyPool
	limiter *RateLimiter
	model   string

	maxRetries int
	backoff    time.Duration
}

// NewClient returns a Client that rotates across keys using model for every
// call.
func NewClient(keys *KeyPool, limiter *RateLimiter, model string) *Client {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Client{keys: keys, limiter: limiter, model: model, maxRetries: 3, backoff: 500 * time.Millisecond}
}

// Generate sends prompt to the model and returns its text response,
// retrying transport failures with bounded exponential backoff per spec §7.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		key := c.keys.Next()
		if err := c.limiter.Acquire(ctx, key); err != nil {
			return "", errs.New(errs.KindTransport, "llm.Generate", err)
		}
		text, err := c.generateOnce(ctx, key, prompt)
		c.limiter.Release()
		if err == nil {
			return text, nil
		}
		lastErr = err
		logging.Get(logging.CategoryLLM).Warn("generate attempt %d/%d failed: %v", attempt+1, c.maxRetries+1, err)

		select {
		case <-ctx.Done():
			return "", errs.New(errs.KindTransport, "llm.Generate", ctx.Err())
		case <-time.After(c.backoff * time.Duration(1<<attempt)):
		}
	}
	return "", errs.New(errs.KindTransport, "llm.Generate", fmt.Errorf("exhausted %d retries: %w", c.maxRetries, lastErr))
}

func (c *Client) generateOnce(ctx context.Context, apiKey, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return "", fmt.Errorf("llm: new client: %w", err)
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	result, err := client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("llm: generate content: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("llm: empty response from model %s", c.model)
	}

	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		text += part.Text
	}
	if text == "" {
		return "", fmt.Errorf("llm: response had no text parts")
	}
	return text, nil
}
