// Package formatter renders parsed verdicts as canonical markdown or as terminal text.
package formatter

import (
	"fmt"
	"strings"

	"truthbot/internal/models"
	"truthbot/internal/verdict"
	"truthbot/pkg/utils"

)

// FormatMarkdown parses a loosely formatted verdict and re-renders it in the
// canonical layout. An empty claim is taken from the document's CLAIM line.
// Raw-text fallback reasoning is dropped so the output re-formats to itself.
func FormatMarkdown(content, claim string) string {
	if strings.TrimSpace(claim) == "" {
		claim = verdict.ExtractClaim(content)
	}

	v := verdict.Parse(content, claim, 0)
	if verdict.IsFallbackReasoning(content, v.Reasoning) {
		v.Reasoning = ""
	}

	return Markdown(v)
}

// Markdown renders v in the layout the parser reads.
func Markdown(v models.ParsedVerdict) string {
	var sb strings.Builder

	sb.WriteString("**FACT-CHECK VERDICT**\n")
	fmt.Fprintf(&sb, "**CLAIM:** %s\n", text.NormalizeWhitespace(v.Claim))
	fmt.Fprintf(&sb, "**VERDICT:** %s\n", verdictText(v.VerdictType))
	fmt.Fprintf(&sb, "**CONFIDENCE:** %s\n", v.Confidence)
	sb.WriteString("**WHY (1–3 sentences):**\n")
	sb.WriteString(text.NormalizeWhitespace(v.Reasoning))
	sb.WriteString("\n")
	sb.WriteString("**TOP SOURCES (max 6):**\n")

	for _, src := range v.Sources {
		fields := []string{src.Title, src.URL, string(src.Relationship)}
		if src.Reason != "" {
			fields = append(fields, src.Reason)
		}

		sb.WriteString("- ")
		sb.WriteString(strings.Join(fields, " "+verdict.FieldSeparator+" "))
		sb.WriteString("\n")
	}

	sb.WriteString("**NOTES / LIMITATIONS:**")

	for _, l := range v.Limitations {
		sb.WriteString("\n- ")
		sb.WriteString(l)
	}

	return sb.String()
}

var text = utils.NewStringHelper()

func verdictText(t models.VerdictType) string {
	return strings.ReplaceAll(string(t), "_", " ")
}
