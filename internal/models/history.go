package models

import "time"

// CheckRecord is a completed fact-check kept in history.
type CheckRecord struct {
	CreatedAt          time.Time   `json:"created_at"`
	ID                 string      `json:"id"`
	Claim              string      `json:"claim"`
	ClaimHash          string      `json:"claim_hash"`
	VerdictType        VerdictType `json:"verdict_type"`
	Confidence         Confidence  `json:"confidence"`
	Verdict            string      `json:"verdict"`
	SearchResultsCount int         `json:"search_results_count"`
}

// Response rebuilds the API response the record was created from.
func (r *CheckRecord) Response() *FactCheckResponse {
	return &FactCheckResponse{
		Claim:              r.Claim,
		SearchResultsCount: r.SearchResultsCount,
		Verdict:            r.Verdict,
		Success:            true,
	}
}
