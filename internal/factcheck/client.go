// Package factcheck provides the client for the TruthBot fact-check API.
package factcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"truthbot/internal/logger"
	"truthbot/internal/models"
	"truthbot/pkg/utils"
)

// Client errors.
var (
	ErrEmptyClaim      = errors.New("claim cannot be empty")
	ErrFactCheckFailed = errors.New("fact-check failed")
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 10 * 1024 * 1024

// APIError is returned when the service answers with a non-2xx status or
// reports success:false.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match ErrFactCheckFailed.
func (e *APIError) Unwrap() error {
	return ErrFactCheckFailed
}

// Checker submits a claim for fact-checking.
type Checker interface {
	Check(ctx context.Context, claim string) (*models.FactCheckResponse, error)
}

// Ensure Client implements Checker.
var _ Checker = (*Client)(nil)

// Client talks to the fact-check API at a fixed base URL.
type Client struct {
	httpClient *http.Client
	headers    *utils.HTTPHelper
	logger     *logger.Logger
	baseURL    string
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each request. Zero disables the client-side timeout so
// only the request context applies.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.headers = utils.NewHTTPHelperWithAgent(ua) }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		headers:    utils.NewHTTPHelper(),
	}

	for _, o := range opts {
		o(c)
	}

	c.logger = logger.OrDiscard(c.logger)

	return c
}

// BaseURL returns the API base URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Check submits claim and returns the raw verdict response. A blank claim is
// rejected before any request is made. Every error wraps ErrFactCheckFailed
// except ErrEmptyClaim.
func (c *Client) Check(ctx context.Context, claim string) (*models.FactCheckResponse, error) {
	claim = strings.TrimSpace(claim)
	if claim == "" {
		return nil, ErrEmptyClaim
	}

	c.logger.Debug("Submitting claim", "base_url", c.baseURL, "claim_len", len(claim))

	start := time.Now()

	var out models.FactCheckResponse
	if err := c.do(ctx, http.MethodPost, "/fact-check", models.FactCheckRequest{Claim: claim}, &out); err != nil {
		return nil, err
	}

	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "Fact-checking failed"
		}

		return nil, &APIError{StatusCode: http.StatusOK, Message: msg}
	}

	c.logger.Debug("Claim checked", "search_results", out.SearchResultsCount, "duration", time.Since(start))

	return &out, nil
}

// Health reports whether the API answered GET /health with a 2xx status.
func (c *Client) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return false
	}

	c.headers.Apply(req, nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Health check failed", "error", err)
		return false
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()

	return utils.IsSuccess(resp.StatusCode)
}

// History lists the most recent saved checks, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]models.CheckRecord, error) {
	path := "/history"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	var out []models.CheckRecord
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// HistoryRecord fetches one saved check by id.
func (c *Client) HistoryRecord(ctx context.Context, id string) (*models.CheckRecord, error) {
	var out models.CheckRecord
	if err := c.do(ctx, http.MethodGet, "/history/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: failed to marshal request: %w", ErrFactCheckFailed, err)
		}

		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", ErrFactCheckFailed, err)
	}

	c.headers.Apply(req, nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", ErrFactCheckFailed, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", ErrFactCheckFailed, err)
	}

	if !utils.IsSuccess(resp.StatusCode) {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
		c.logger.Warn("API request failed", "path", path, "status", resp.StatusCode, "message", apiErr.Message)

		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to parse response: %w", ErrFactCheckFailed, err)
	}

	return nil
}

// errorMessage prefers the body's detail, then error, then a generic status line.
func errorMessage(status int, body []byte) string {
	var e models.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil {
		if msg := utils.FirstNonEmpty(e.Detail, e.Error); msg != "" {
			return msg
		}
	}

	return fmt.Sprintf("API Error: %d %s", status, http.StatusText(status))
}
