// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm sends prompts to an OpenAI-compatible chat-completion service
// (the Hugging Face router by default) and returns normalized text.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-supervisor/internal/httputil"
	"github.com/pdiddy/research-supervisor/internal/normalize"
	"github.com/pdiddy/research-supervisor/pkg/types"
)

// FailurePrefix starts the in-band text of every failed completion.
const FailurePrefix = "AI Request failed: "

// ErrMissingToken is reported, without a network call, when no API key is configured.
var ErrMissingToken = errors.New("HF_TOKEN is not set in environment variables")

// systemPrompt steers the model toward output that needs little cleanup.
const systemPrompt = "You are a clear, step-by-step research assistant. " +
	"Answer in simple English using short paragraphs and numbered/bullet lists when useful. " +
	"Avoid custom labels like 'Multiple Perspectives:'. " +
	"Headings should be simple plain text like 'Summary:' or 'Recommendation:'. " +
	"Do not use Markdown bold or asterisks."

// Completion is the outcome of one prompt: either normalized Text or the
// Err that prevented it.
type Completion struct {
	Text string
	Err  error
}

// OK reports whether the completion succeeded.
func (c Completion) OK() bool { return c.Err == nil }

// String renders the completion as pipeline content. A failure becomes
// FailurePrefix followed by the error text.
func (c Completion) String() string {
	if c.Err != nil {
		return FailurePrefix + c.Err.Error()
	}
	return c.Text
}

// Client calls the chat-completion endpoint. It is safe for concurrent use.
type Client struct {
	cfg    types.LLMConfig
	http   *http.Client
	logger *zap.Logger
}

// NewClient returns a Client for cfg. An empty cfg.APIKey is accepted; each
// Complete call then fails with ErrMissingToken.
func NewClient(cfg types.LLMConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   httputil.NewClient(cfg.HTTPConfig),
		logger: logger.Named("llm"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends prompt with the fixed system instruction and returns the
// normalized reply. It makes exactly one attempt and never panics or returns
// a Go error; failures are carried in Completion.Err.
func (c *Client) Complete(ctx context.Context, prompt string) Completion {
	if c.cfg.APIKey == "" {
		return Completion{Err: ErrMissingToken}
	}

	raw, err := c.send(ctx, prompt)
	if err != nil {
		c.logger.Warn("completion failed", zap.String("model", c.cfg.Model), zap.Error(err))
		return Completion{Err: err}
	}
	return Completion{Text: normalize.Clean(raw)}
}

func (c *Client) send(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	c.logger.Debug("sending completion", zap.String("model", c.cfg.Model), zap.Int("prompt_bytes", len(prompt)))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling chat completions: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return "", fmt.Errorf("chat completions: %w", err)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decoding chat completion: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return cr.Choices[0].Message.Content, nil
}
