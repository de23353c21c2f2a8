package search

import (
	"fmt"
	"strings"

	"truthbot/internal/models"
	"truthbot/pkg/utils"
)

// contextContentRunes bounds each result's content in the agent context.
const contextContentRunes = 300

// FormatContext renders search results as the evidence block handed to the agent.
func FormatContext(claim string, resp *models.SearchResponse) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Search Results for '%s':\n\n", claim)

	if resp == nil {
		return sb.String()
	}

	for i, r := range resp.Results {
		fmt.Fprintf(&sb, "%d. Title: %s\n", i+1, orNA(r.Title))
		fmt.Fprintf(&sb, "   URL: %s\n", orNA(r.URL))
		fmt.Fprintf(&sb, "   Content: %s...\n", utils.TruncateRunes(orNA(r.Content), contextContentRunes))
		fmt.Fprintf(&sb, "   Source: %s\n\n", orNA(r.Source))
	}

	return sb.String()
}

// FailureContext is handed to the agent when the search step failed.
func FailureContext(err error) string {
	return fmt.Sprintf("Search failed: %v. Please provide analysis based on your knowledge.", err)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}

	return s
}
