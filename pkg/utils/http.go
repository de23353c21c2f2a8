// Package utils provides common utility functions.
package utils

import "net/http"

// UserAgent identifies TruthBot HTTP clients.
const UserAgent = "TruthBot/1.0"

// HTTPHelper provides HTTP utility functions.
type HTTPHelper struct {
	userAgent string
}

// NewHTTPHelper creates a new HTTP helper using the default user agent.
func NewHTTPHelper() *HTTPHelper {
	return &HTTPHelper{userAgent: UserAgent}
}

// NewHTTPHelperWithAgent creates a helper that sends the given user agent.
func NewHTTPHelperWithAgent(userAgent string) *HTTPHelper {
	if userAgent == "" {
		userAgent = UserAgent
	}

	return &HTTPHelper{userAgent: userAgent}
}

// BuildHeaders creates JSON request headers with defaults.
func (h *HTTPHelper) BuildHeaders(customHeaders map[string]string) http.Header {
	headers := http.Header{}

	headers.Set("User-Agent", h.userAgent)
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/json")

	for key, value := range customHeaders {
		headers.Set(key, value)
	}

	return headers
}

// Apply copies the default and custom headers onto req.
func (h *HTTPHelper) Apply(req *http.Request, customHeaders map[string]string) {
	for key, values := range h.BuildHeaders(customHeaders) {
		req.Header[key] = values
	}
}

// IsSuccess reports whether status is a 2xx code.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// IsRetryableStatus determines if we should retry based on HTTP status code.
func IsRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout:
		return true
	}

	return false
}
