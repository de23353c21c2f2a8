// Package openai analyzes claims with the OpenAI chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"truthbot/internal/agent"
	"truthbot/internal/logger"
	"truthbot/pkg/utils"
)

// Provider defaults.
const (
	DefaultEndpoint = "https://api.openai.com/v1"
	DefaultModel    = "gpt-4o-mini"
)

func init() {
	agent.RegisterProvider("openai", New, "gpt")
}

// Client is an agent.Agent backed by chat completions.
type Client struct {
	httpClient   *http.Client
	headers      *utils.HTTPHelper
	logger       *logger.Logger
	endpoint     string
	apiKey       string
	model        string
	systemPrompt string
	temperature  float64
	maxTokens    int
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// New creates an OpenAI agent from cfg.
func New(cfg agent.Config) (agent.Agent, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", agent.ErrMissingAPIKey)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		headers:      utils.NewHTTPHelper(),
		logger:       logger.OrDiscard(cfg.Logger),
		endpoint:     strings.TrimRight(utils.FirstNonEmpty(cfg.Endpoint, DefaultEndpoint), "/"),
		apiKey:       cfg.APIKey,
		model:        utils.FirstNonEmpty(cfg.Model, DefaultModel),
		systemPrompt: cfg.SystemPrompt,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
	}, nil
}

// Analyze sends the claim and evidence as one chat turn and returns the reply.
func (c *Client) Analyze(ctx context.Context, claim, searchContext string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: agent.UserMessage(claim, searchContext)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: failed to create request: %w", err)
	}

	c.headers.Apply(req, map[string]string{"Authorization": "Bearer " + c.apiKey})

	startTime := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return "", fmt.Errorf("openai: failed to read response: %w", err)
	}

	c.logger.Debug("OpenAI response", "model", c.model, "status", resp.StatusCode, "duration", time.Since(startTime))

	var result chatResponse
	if err := json.Unmarshal(data, &result); err != nil && utils.IsSuccess(resp.StatusCode) {
		return "", fmt.Errorf("openai: failed to parse response: %w", err)
	}

	if !utils.IsSuccess(resp.StatusCode) {
		msg := utils.TruncateRunes(string(data), 200)
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}

		return "", fmt.Errorf("openai: status %d: %s", resp.StatusCode, msg)
	}

	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai: %w", agent.ErrEmptyResponse)
	}

	return result.Choices[0].Message.Content, nil
}
