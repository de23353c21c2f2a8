package models

// FactCheckRequest is the body of POST /fact-check.
type FactCheckRequest struct {
	Claim string `json:"claim"`
}

// FactCheckResponse is the body returned by POST /fact-check.
// Verdict holds the raw markdown written by the analysis agent.
type FactCheckResponse struct {
	Claim              string `json:"claim"`
	SearchResultsCount int    `json:"search_results_count"`
	Verdict            string `json:"verdict"`
	Success            bool   `json:"success"`
	Error              string `json:"error,omitempty"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ErrorResponse is the body of a non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}
