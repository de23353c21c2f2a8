// Package search runs web searches that give the analysis agent its evidence.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"truthbot/internal/config"
	"truthbot/internal/logger"
	"truthbot/internal/models"
	"truthbot/pkg/utils"
)

// Search errors.
var (
	ErrMissingAPIKey        = errors.New("TAVILY_API_KEY is not configured")
	ErrEmptyQuery           = errors.New("query must be a non-empty string")
	ErrNoResults            = errors.New("no search results found")
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
)

// Searcher finds web pages relevant to a claim.
type Searcher interface {
	Search(ctx context.Context, query string) (*models.SearchResponse, error)
}

// Ensure Client implements Searcher.
var _ Searcher = (*Client)(nil)

// Client calls the Tavily search API with config-driven retry logic.
type Client struct {
	httpClient     *http.Client
	retryPolicy    *config.RetryPolicy
	headers        *utils.HTTPHelper
	logger         *logger.Logger
	endpoint       string
	apiKey         string
	includeDomains []string
	excludeDomains []string
	maxResults     int
	contentLimit   int
}

type searchRequest struct {
	Query          string   `json:"query"`
	IncludeDomains []string `json:"include_domains"`
	ExcludeDomains []string `json:"exclude_domains"`
	MaxResults     int      `json:"max_results"`
}

type searchResponse struct {
	Query   string                `json:"query"`
	Results []models.SearchResult `json:"results"`
}

// NewClient creates a search client from the search config.
func NewClient(cfg config.SearchConfig, log *logger.Logger) *Client {
	retry := cfg.Retry

	return &Client{
		httpClient: &http.Client{
			Timeout: retry.GetTimeout(),
		},
		retryPolicy:    &retry,
		headers:        utils.NewHTTPHelper(),
		logger:         logger.OrDiscard(log),
		endpoint:       strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:         cfg.APIKey,
		includeDomains: cfg.IncludeDomains,
		excludeDomains: cfg.ExcludeDomains,
		maxResults:     cfg.MaxResults,
		contentLimit:   cfg.ContentLimit,
	}
}

// Search runs query and returns up to maxResults results with their content
// truncated to contentLimit characters.
func (c *Client) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	body, err := json.Marshal(searchRequest{
		Query:          query,
		IncludeDomains: nonNil(c.includeDomains),
		ExcludeDomains: nonNil(c.excludeDomains),
		MaxResults:     c.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	data, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}

	var raw searchResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(raw.Results) == 0 {
		return nil, fmt.Errorf("%w for: %s", ErrNoResults, query)
	}

	results := make([]models.SearchResult, 0, len(raw.Results))
	for _, r := range raw.Results {
		r.Content = utils.TruncateRunes(r.Content, c.contentLimit)
		results = append(results, r)
	}

	return &models.SearchResponse{Query: query, Results: results}, nil
}

// post sends body, retrying network failures and retryable statuses.
func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryPolicy.MaxAttempts; attempt++ {
		if err := sleep(ctx, c.retryPolicy.GetRetryDelay(attempt)); err != nil {
			return nil, err
		}

		startTime := time.Now()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/search", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		c.headers.Apply(req, map[string]string{"Authorization": "Bearer " + c.apiKey})

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("search cancelled: %w", ctx.Err())
			}

			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, c.retryPolicy.MaxAttempts, err)
			c.logger.Warn("Search request failed", "attempt", attempt, "error", err)

			continue
		}

		data, readErr := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
		_ = resp.Body.Close()

		c.logger.Debug("Search response", "status", resp.StatusCode, "attempt", attempt, "duration", time.Since(startTime))

		if !utils.IsSuccess(resp.StatusCode) {
			lastErr = fmt.Errorf("%w: %d: %s", ErrUnexpectedStatusCode, resp.StatusCode, utils.TruncateRunes(string(data), 200))

			if !utils.IsRetryableStatus(resp.StatusCode) {
				return nil, lastErr
			}

			c.logger.Warn("Search returned retryable status", "attempt", attempt, "status", resp.StatusCode)

			continue
		}

		if readErr != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", readErr)

			continue
		}

		return data, nil
	}

	return nil, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("search cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
