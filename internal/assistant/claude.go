package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AngelCh415/marketops/internal/upstream"
)

var (
	ErrNoAPIKey     = errors.New("chat api key not configured")
	ErrEmptyMessage = errors.New("message required")
	ErrNoCompletion = errors.New("no completion returned")
)

// Completion is the text answer plus the tokens billed for it.
type Completion struct {
	Text   string
	Tokens int
}

type Completer interface {
	Complete(ctx context.Context, system, user string) (Completion, error)
}

// ClaudeClient calls the Anthropic Messages API.
type ClaudeClient struct {
	c       upstream.HTTPClient
	apiKey  string
	baseURL string
	model   string
}

func NewClaudeClient(c upstream.HTTPClient, apiKey, baseURL, model string) *ClaudeClient {
	return &ClaudeClient{c: c, apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), model: model}
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (c *ClaudeClient) Complete(ctx context.Context, system, user string) (Completion, error) {
	if c.apiKey == "" {
		return Completion{}, ErrNoAPIKey
	}
	req := claudeRequest{
		Model:     c.model,
		MaxTokens: 1024,
		System:    system,
		Messages:  []claudeMessage{{Role: "user", Content: user}},
	}
	h := upstream.Header{"x-api-key": c.apiKey, "anthropic-version": "2023-06-01"}
	var resp claudeResponse
	if err := upstream.PostJSON(ctx, c.c, c.baseURL+"/messages", h, req, &resp); err != nil {
		return Completion{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Content) == 0 {
		return Completion{}, ErrNoCompletion
	}
	return Completion{
		Text:   resp.Content[0].Text,
		Tokens: resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}
