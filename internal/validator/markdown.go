// Package validator reports how well a verdict markdown matches the expected layout.
//
// It is diagnostic only: the parser accepts any input, and nothing here
// changes what the parser returns.
package validator

import (
	"fmt"
	"io"
	"strings"

	"truthbot/internal/config"
	"truthbot/internal/verdict"
	"truthbot/pkg/utils"
)

// Section names used in RequiredSections and in ValidationResult.Sections.
const (
	SectionVerdict    = "verdict"
	SectionConfidence = "confidence"
	SectionWhy        = "why"
	SectionTopSources = "top_sources"
	SectionNotes      = "notes"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Line    int
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Sections map[string]int
	Errors   []ValidationError
	Warnings []string
	Stats    ValidationStats
	IsValid  bool
}

// ValidationStats contains validation statistics.
type ValidationStats struct {
	TotalLines     int
	SourceLines    int
	ValidSources   int
	DroppedSources int
	Limitations    int
}

// VerdictValidator checks verdict markdown against the configured rules.
type VerdictValidator struct {
	required   []string
	minSources int
	maxSources int
}

// NewVerdictValidator creates a validator from the validation config.
func NewVerdictValidator(cfg *config.Config) *VerdictValidator {
	if cfg == nil {
		cfg = config.Default()
	}

	return &VerdictValidator{
		required:   cfg.Validation.RequiredSections,
		minSources: cfg.Validation.MinSources,
		maxSources: cfg.Validation.MaxSources,
	}
}

// Validate scans markdown the same way the parser does and records which
// sections were found and which source lines were dropped.
func (v *VerdictValidator) Validate(markdown string) *ValidationResult {
	result := &ValidationResult{
		IsValid:  true,
		Sections: map[string]int{},
		Errors:   []ValidationError{},
		Warnings: []string{},
	}

	inSources := false
	inLimitations := false
	firstDropped := ""

	for i, line := range strings.Split(markdown, "\n") {
		lineNum := i + 1
		upper := strings.ToUpper(line)
		result.Stats.TotalLines++

		if inSources && (strings.Contains(upper, "NOTES") || strings.Contains(upper, "IMPORTANT")) {
			inSources = false
		}

		if inSources && !v.checkSourceLine(result, line, lineNum) && firstDropped == "" {
			firstDropped = strings.TrimSpace(line)
		}

		if inLimitations && (strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•")) {
			result.Stats.Limitations++
		}

		if strings.Contains(upper, "VERDICT:") {
			markFirst(result, SectionVerdict, lineNum)

			if _, ok := verdict.MatchVerdict(upper); !ok {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("line %d: unrecognised verdict label %q", lineNum, strings.TrimSpace(line)))
			}
		}

		if strings.Contains(upper, "CONFIDENCE:") {
			markFirst(result, SectionConfidence, lineNum)

			if _, ok := verdict.MatchConfidence(upper); !ok {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("line %d: unrecognised confidence %q", lineNum, strings.TrimSpace(line)))
			}
		}

		if strings.Contains(upper, "WHY") {
			markFirst(result, SectionWhy, lineNum)
		}

		if strings.Contains(upper, "TOP SOURCES") {
			markFirst(result, SectionTopSources, lineNum)

			inSources = true
		}

		if verdict.IsLimitationsMarker(upper) {
			markFirst(result, SectionNotes, lineNum)

			inLimitations = true
		}
	}

	for _, section := range v.required {
		if _, ok := result.Sections[section]; !ok {
			result.IsValid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   section,
				Message: fmt.Sprintf("missing %s section", section),
			})
		}
	}

	if result.Stats.ValidSources < v.minSources {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Field: SectionTopSources,
			Line:  result.Sections[SectionTopSources],
			Value: firstDropped,
			Message: fmt.Sprintf(
				"minimum sources not met: got %d, expected at least %d",
				result.Stats.ValidSources,
				v.minSources,
			),
		})
	}

	if v.maxSources > 0 && result.Stats.ValidSources > v.maxSources {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf(
				"unusually high source count: got %d, expected max %d",
				result.Stats.ValidSources,
				v.maxSources,
			),
		)
	}

	return result
}

// checkSourceLine records stats for one line of the sources section and
// reports false when a source line was dropped.
func (v *VerdictValidator) checkSourceLine(result *ValidationResult, line string, lineNum int) bool {
	parts, ok := verdict.SplitSourceFields(line)
	if !ok {
		return true
	}

	result.Stats.SourceLines++

	if len(parts) < 3 {
		result.Stats.DroppedSources++
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("line %d: source dropped, expected at least 3 fields separated by %q, got %d",
				lineNum, verdict.FieldSeparator, len(parts)))

		return false
	}

	result.Stats.ValidSources++

	if !strings.HasPrefix(parts[1], "http") {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("line %d: source URL %q has no scheme, https:// will be assumed", lineNum, utils.NewStringHelper().TruncateString(parts[1], 60)))
	}

	return true
}

func markFirst(result *ValidationResult, section string, lineNum int) {
	if _, seen := result.Sections[section]; !seen {
		result.Sections[section] = lineNum
	}
}

// String returns string representation of validation result.
func (r *ValidationResult) String() string {
	status := "✅ VALID"
	if !r.IsValid {
		status = "❌ INVALID"
	}

	return fmt.Sprintf(
		"%s | Sections: %d | Sources: %d | Dropped: %d | Limitations: %d | Warnings: %d",
		status,
		len(r.Sections),
		r.Stats.ValidSources,
		r.Stats.DroppedSources,
		r.Stats.Limitations,
		len(r.Warnings),
	)
}

// PrintErrors prints validation errors in readable format.
func (r *ValidationResult) PrintErrors(w io.Writer) {
	if len(r.Errors) == 0 {
		return
	}

	fmt.Fprintln(w, "❌ Validation Errors:")

	for _, err := range r.Errors {
		if err.Line > 0 {
			fmt.Fprintf(w, "  Line %d", err.Line)

			if err.Field != "" {
				fmt.Fprintf(w, " [%s]", err.Field)
			}

			fmt.Fprintf(w, ": %s\n", err.Message)

			if err.Value != "" {
				fmt.Fprintf(w, "    Found: %q\n", err.Value)
			}
		} else {
			fmt.Fprintf(w, "  %s\n", err.Message)
		}
	}
}

// PrintWarnings prints validation warnings.
func (r *ValidationResult) PrintWarnings(w io.Writer) {
	if len(r.Warnings) == 0 {
		return
	}

	fmt.Fprintln(w, "⚠️  Validation Warnings:")

	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  %s\n", warn)
	}
}
