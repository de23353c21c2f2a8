// Package verdict turns the markdown verdict written by the analysis agent into a ParsedVerdict.
//
// The input is not schema-constrained, so Parse never fails: missing or
// malformed sections fall back to defaults instead of producing errors.
package verdict

import (
	"regexp"
	"strings"

	"truthbot/internal/models"
	"truthbot/pkg/utils"
)

// Section markers, matched against the upper-cased line.
const (
	markerVerdict     = "VERDICT:"
	markerConfidence  = "CONFIDENCE:"
	markerWhy         = "WHY"
	markerTopSources  = "TOP SOURCES"
	markerNotes       = "NOTES"
	markerImportant   = "IMPORTANT"
	markerLimitations = "LIMITATIONS"
	emphasis          = "**"
)

const (
	// FieldSeparator splits the fields of a source line.
	FieldSeparator = "—"
	// DefaultReason is used when a source line carries no reason field.
	DefaultReason = "Source relevant to claim"
	// ReasoningFallbackRunes bounds the raw-text fallback for reasoning.
	ReasoningFallbackRunes = 300

	minSourceFields = 3
)

// scanner holds the per-section accumulators of a single forward pass.
type scanner struct {
	result models.ParsedVerdict

	reasoning []string

	inReasoning   bool
	inSources     bool
	inLimitations bool
}

// Parse extracts a ParsedVerdict from markdown. claim and searchResultsCount
// are copied through untouched.
func Parse(markdown, claim string, searchResultsCount int) models.ParsedVerdict {
	s := &scanner{
		result: models.ParsedVerdict{
			VerdictType:        models.VerdictUnverifiable,
			Confidence:         models.ConfidenceLow,
			Claim:              claim,
			Sources:            []models.Source{},
			Limitations:        []string{},
			SearchResultsCount: searchResultsCount,
		},
	}

	for _, line := range strings.Split(markdown, "\n") {
		s.scanLine(line)
	}

	s.result.Reasoning = strings.TrimSpace(strings.Join(s.reasoning, " "))
	if s.result.Reasoning == "" {
		s.result.Reasoning = utils.TruncateRunes(markdown, ReasoningFallbackRunes)
	}

	return s.result
}

// ParseResponse parses the verdict carried by an API response.
func ParseResponse(resp *models.FactCheckResponse) models.ParsedVerdict {
	if resp == nil {
		return Parse("", "", 0)
	}

	return Parse(resp.Verdict, resp.Claim, resp.SearchResultsCount)
}

// scanLine closes sections whose stop marker is on line, feeds line to the
// sections still open, then opens the sections whose marker is on line.
func (s *scanner) scanLine(line string) {
	upper := strings.ToUpper(line)

	if s.inReasoning && (strings.Contains(upper, markerTopSources) ||
		strings.Contains(upper, markerNotes) ||
		strings.Contains(upper, markerImportant)) {
		s.inReasoning = false
	}

	if s.inSources && (strings.Contains(upper, markerNotes) || strings.Contains(upper, markerImportant)) {
		s.inSources = false
	}

	if s.inReasoning {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			s.reasoning = append(s.reasoning, trimmed)
		}
	}

	if s.inSources {
		if src, ok := ParseSourceLine(line); ok {
			s.result.Sources = append(s.result.Sources, src)
		}
	}

	if s.inLimitations {
		if item, ok := limitationItem(line); ok {
			s.result.Limitations = append(s.result.Limitations, item)
		}
	}

	if strings.Contains(upper, markerVerdict) {
		if v, ok := MatchVerdict(upper); ok {
			s.result.VerdictType = v
		}
	}

	if strings.Contains(upper, markerConfidence) {
		if c, ok := MatchConfidence(upper); ok {
			s.result.Confidence = c
		}
	}

	if strings.Contains(upper, markerWhy) {
		s.reasoning = s.reasoning[:0]
		s.inReasoning = true
	}

	if strings.Contains(upper, markerTopSources) {
		s.inSources = true
	}

	if IsLimitationsMarker(upper) {
		s.inLimitations = true
	}
}

// MatchVerdict maps a verdict line to a label. PARTIALLY is checked first so
// "PARTIALLY TRUE" is not read as TRUE.
func MatchVerdict(line string) (models.VerdictType, bool) {
	upper := strings.ToUpper(line)

	switch {
	case strings.Contains(upper, "PARTIALLY"):
		return models.VerdictPartiallyTrue, true
	case strings.Contains(upper, "TRUE"):
		return models.VerdictTrue, true
	case strings.Contains(upper, "FALSE"):
		return models.VerdictFalse, true
	case strings.Contains(upper, "MISLEADING"):
		return models.VerdictMisleading, true
	case strings.Contains(upper, "UNVERIFIABLE"):
		return models.VerdictUnverifiable, true
	}

	return "", false
}

// MatchConfidence maps a confidence line to a level.
func MatchConfidence(line string) (models.Confidence, bool) {
	upper := strings.ToUpper(line)

	switch {
	case strings.Contains(upper, "HIGH"):
		return models.ConfidenceHigh, true
	case strings.Contains(upper, "MEDIUM"):
		return models.ConfidenceMedium, true
	case strings.Contains(upper, "LOW"):
		return models.ConfidenceLow, true
	}

	return "", false
}

// IsLimitationsMarker reports whether line opens the limitations section.
func IsLimitationsMarker(line string) bool {
	upper := strings.ToUpper(line)

	return strings.Contains(upper, markerNotes) ||
		strings.Contains(upper, markerImportant) ||
		(strings.Contains(upper, markerLimitations) && !strings.Contains(upper, emphasis))
}

// SplitSourceFields strips the leading hyphen of a source line and returns
// its trimmed fields. ok is false when the line does not start with "-".
func SplitSourceFields(line string) ([]string, bool) {
	if !strings.HasPrefix(line, "-") {
		return nil, false
	}

	parts := strings.Split(line[1:], FieldSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts, true
}

// ParseSourceLine parses "- Title — URL — Relationship — Reason".
// Lines with fewer than three fields yield no source.
func ParseSourceLine(line string) (models.Source, bool) {
	parts, ok := SplitSourceFields(line)
	if !ok || len(parts) < minSourceFields {
		return models.Source{}, false
	}

	reason := DefaultReason
	if len(parts) > minSourceFields && parts[3] != "" {
		reason = parts[3]
	}

	return models.Source{
		Title:        parts[0],
		URL:          NormalizeURL(parts[1]),
		Credibility:  InferCredibility(parts[0]),
		Relationship: ClassifyRelationship(parts[2]),
		Reason:       reason,
	}, true
}

// NormalizeURL prefixes https:// unless the value already starts with "http".
func NormalizeURL(raw string) string {
	if strings.HasPrefix(raw, "http") {
		return raw
	}

	return "https://" + raw
}

// InferCredibility estimates source credibility from its title.
func InferCredibility(title string) models.Credibility {
	lower := strings.ToLower(title)

	switch {
	case strings.Contains(lower, "nasa"),
		strings.Contains(lower, "scientific"),
		strings.Contains(lower, "government"):
		return models.CredibilityHigh
	case strings.Contains(lower, "blog"), strings.Contains(lower, "forum"):
		return models.CredibilityLow
	}

	return models.CredibilityMedium
}

// ClassifyRelationship maps the relationship field of a source line.
func ClassifyRelationship(field string) models.Relationship {
	lower := strings.ToLower(field)

	switch {
	case strings.Contains(lower, "support"):
		return models.RelationshipSupports
	case strings.Contains(lower, "contradict"):
		return models.RelationshipContradicts
	}

	return models.RelationshipContext
}

func limitationItem(line string) (string, bool) {
	for _, prefix := range []string{"-", "•"} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}

	return "", false
}

var claimLine = regexp.MustCompile(`(?i)^[\s*_#>-]*claim[\s*_]*:[\s*_]*(.*?)[\s*_]*$`)

// ExtractClaim returns the text of the first "CLAIM:" line in markdown, or ""
// when there is none.
func ExtractClaim(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		if m := claimLine.FindStringSubmatch(line); m != nil && m[1] != "" {
			return m[1]
		}
	}

	return ""
}

// IsFallbackReasoning reports whether reasoning is the raw-text fallback Parse
// substitutes when markdown has no reasoning section.
func IsFallbackReasoning(markdown, reasoning string) bool {
	return reasoning == utils.TruncateRunes(markdown, ReasoningFallbackRunes)
}
