// Package gemini analyzes claims with Google's Gemini models.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"truthbot/internal/agent"
	"truthbot/internal/logger"
	"truthbot/pkg/utils"
)

// DefaultModel is used when the config names no model.
const DefaultModel = "gemini-1.5-flash"

func init() {
	agent.RegisterProvider("gemini", New, "google")
}

// Client is an agent.Agent backed by the Gemini API.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *logger.Logger
	name   string
}

// New creates a Gemini agent from cfg.
func New(cfg agent.Config) (agent.Agent, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", agent.ErrMissingAPIKey)
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := genai.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	name := utils.FirstNonEmpty(cfg.Model, DefaultModel)

	model := client.GenerativeModel(name)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(cfg.SystemPrompt)}}
	model.SetTemperature(float32(cfg.Temperature))

	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}

	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockOnlyHigh},
	}

	return &Client{
		client: client,
		model:  model,
		logger: logger.OrDiscard(cfg.Logger),
		name:   name,
	}, nil
}

// Analyze generates the verdict markdown for claim.
func (c *Client) Analyze(ctx context.Context, claim, searchContext string) (string, error) {
	startTime := time.Now()

	resp, err := c.model.GenerateContent(ctx, genai.Text(agent.UserMessage(claim, searchContext)))
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	c.logger.Debug("Gemini response", "model", c.name, "duration", time.Since(startTime))

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini: %w", agent.ErrEmptyResponse)
	}

	return text, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder

	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return strings.TrimSpace(sb.String())
}
