package models

// SearchResult is one web page returned by the search provider.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Source  string  `json:"source,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// SearchResponse holds the results for one query.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// Count returns the number of results, tolerating a nil response.
func (r *SearchResponse) Count() int {
	if r == nil {
		return 0
	}

	return len(r.Results)
}
