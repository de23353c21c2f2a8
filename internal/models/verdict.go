// Package models defines data structures shared by the fact-check client, server and parser.
package models

// VerdictType is the overall label assigned to a claim.
type VerdictType string

// Verdict labels.
const (
	VerdictTrue          VerdictType = "TRUE"
	VerdictFalse         VerdictType = "FALSE"
	VerdictPartiallyTrue VerdictType = "PARTIALLY_TRUE"
	VerdictUnverifiable  VerdictType = "UNVERIFIABLE"
	VerdictMisleading    VerdictType = "MISLEADING"
)

// VerdictTypes lists every verdict label in display order.
var VerdictTypes = []VerdictType{
	VerdictTrue,
	VerdictFalse,
	VerdictPartiallyTrue,
	VerdictUnverifiable,
	VerdictMisleading,
}

// Valid reports whether v is one of the known labels.
func (v VerdictType) Valid() bool {
	switch v {
	case VerdictTrue, VerdictFalse, VerdictPartiallyTrue, VerdictUnverifiable, VerdictMisleading:
		return true
	}

	return false
}

// Confidence is the strength of a verdict.
type Confidence string

// Confidence levels.
const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Valid reports whether c is a known confidence level.
func (c Confidence) Valid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// Credibility is the estimated trustworthiness of a cited source.
type Credibility string

// Credibility levels.
const (
	CredibilityHigh   Credibility = "HIGH"
	CredibilityMedium Credibility = "MEDIUM"
	CredibilityLow    Credibility = "LOW"
)

// Valid reports whether c is a known credibility level.
func (c Credibility) Valid() bool {
	return c == CredibilityHigh || c == CredibilityMedium || c == CredibilityLow
}

// Relationship describes how a source relates to the claim.
type Relationship string

// Source relationships.
const (
	RelationshipSupports    Relationship = "Supports"
	RelationshipContradicts Relationship = "Contradicts"
	RelationshipContext     Relationship = "Context"
)

// Valid reports whether r is a known relationship.
func (r Relationship) Valid() bool {
	return r == RelationshipSupports || r == RelationshipContradicts || r == RelationshipContext
}

// Source is one cited reference extracted from a verdict.
type Source struct {
	Title        string       `json:"title"`
	URL          string       `json:"url"`
	Credibility  Credibility  `json:"credibility"`
	Relationship Relationship `json:"relationship"`
	Reason       string       `json:"reason"`
}

// ParsedVerdict is the structured form of a verdict markdown.
type ParsedVerdict struct {
	VerdictType        VerdictType `json:"verdictType"`
	Confidence         Confidence  `json:"confidence"`
	Claim              string      `json:"claim"`
	Reasoning          string      `json:"reasoning"`
	Sources            []Source    `json:"sources"`
	Limitations        []string    `json:"limitations"`
	SearchResultsCount int         `json:"searchResultsCount"`
}
