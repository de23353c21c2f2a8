package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"truthbot/internal/models"

	"github.com/mattn/go-runewidth"
)

// DefaultWidth is used when the caller passes a non-positive width.
const DefaultWidth = 80

// maxTableCell caps the display width of one table cell.
const maxTableCell = 32

var sourceColumns = []string{"#", "Source", "Stance", "Credibility", "URL"}

type verdictStyle struct {
	label       string
	description string
	followUp    string
}

var verdictStyles = map[models.VerdictType]verdictStyle{
	models.VerdictTrue: {
		label:       "✅ CORRECT",
		description: "The evidence strongly supports this claim",
		followUp:    "That's correct! ✅ The evidence strongly supports this claim.",
	},
	models.VerdictFalse: {
		label:       "❌ INCORRECT",
		description: "The evidence contradicts this claim",
		followUp:    "That's incorrect! ❌ The evidence contradicts this claim.",
	},
	models.VerdictPartiallyTrue: {
		label:       "⚠️ PARTIALLY TRUE",
		description: "Some parts are accurate, but context matters",
		followUp:    "That's partially true! ⚠️ Some parts are accurate, but others need context.",
	},
	models.VerdictUnverifiable: {
		label:       "❓ UNVERIFIABLE",
		description: "Insufficient information to verify",
		followUp:    "I couldn't verify this claim. 🤔 There isn't enough reliable information available.",
	},
	models.VerdictMisleading: {
		label:       "🚨 MISLEADING",
		description: "Technically accurate but missing context",
		followUp:    "That's misleading! 🚨 While technically accurate, it's missing important context.",
	},
}

// DefaultFollowUp is shown for a verdict type without its own follow-up.
const DefaultFollowUp = "Check out the analysis above for details."

// Label returns the display label for a verdict type.
func Label(t models.VerdictType) string {
	if s, ok := verdictStyles[t]; ok {
		return s.label
	}

	return string(t)
}

// Description returns the one-line explanation of a verdict type.
func Description(t models.VerdictType) string {
	return verdictStyles[t].description
}

// FollowUp returns the chat message sent after a verdict is shown.
func FollowUp(t models.VerdictType) string {
	if s, ok := verdictStyles[t]; ok {
		return s.followUp
	}

	return DefaultFollowUp
}

// Terminal renders v as a plain-text card no wider than width where possible.
func Terminal(v models.ParsedVerdict, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}

	var sb strings.Builder

	rule := strings.Repeat("─", width)

	sb.WriteString(rule + "\n")
	fmt.Fprintf(&sb, "%s\n", Label(v.VerdictType))

	if desc := Description(v.VerdictType); desc != "" {
		fmt.Fprintf(&sb, "%s\n", desc)
	}

	fmt.Fprintf(&sb, "Confidence: %s\n", v.Confidence)
	sb.WriteString(rule + "\n")

	if v.Claim != "" {
		for _, line := range wrap("Claim: "+v.Claim, width) {
			sb.WriteString(line + "\n")
		}

		sb.WriteString("\n")
	}

	sb.WriteString("Analysis:\n")

	for _, line := range wrap(v.Reasoning, width-2) {
		sb.WriteString("  " + line + "\n")
	}

	if len(v.Sources) > 0 {
		sb.WriteString("\nSources:\n")

		body := make([][]string, 0, len(v.Sources))
		for i, src := range v.Sources {
			body = append(body, []string{
				strconv.Itoa(i + 1), src.Title, string(src.Relationship), string(src.Credibility), src.URL,
			})
		}

		for _, row := range table(sourceColumns, body, maxTableCell) {
			sb.WriteString(row + "\n")
		}
	}

	if len(v.Limitations) > 0 {
		sb.WriteString("\nLimitations:\n")

		for _, l := range v.Limitations {
			for i, line := range wrap(l, width-4) {
				prefix := "  • "
				if i > 0 {
					prefix = "    "
				}

				sb.WriteString(prefix + line + "\n")
			}
		}
	}

	if v.SearchResultsCount > 0 {
		fmt.Fprintf(&sb, "\nAnalyzed %d web sources\n", v.SearchResultsCount)
	}

	sb.WriteString(rule)

	return sb.String()
}

// cell escapes pipes so table cells stay intact.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", "/")
}

// table renders header and body as a pipe table aligned by display width.
// Cells wider than maxCell are cut with an ellipsis.
func table(header []string, body [][]string, maxCell int) []string {
	widths := make([]int, len(header))
	rows := make([][]string, 0, len(body)+1)

	for _, in := range append([][]string{header}, body...) {
		row := make([]string, len(header))

		for i := range row {
			if i < len(in) {
				row[i] = runewidth.Truncate(cell(in[i]), maxCell, "…")
			}

			widths[i] = max(widths[i], runewidth.StringWidth(row[i]), 3)
		}

		rows = append(rows, row)
	}

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}

	out := make([]string, 0, len(rows)+1)

	for i, row := range rows {
		for j := range row {
			row[j] = runewidth.FillRight(row[j], widths[j])
		}

		out = append(out, "| "+strings.Join(row, " | ")+" |")

		if i == 0 {
			out = append(out, "| "+strings.Join(sep, " | ")+" |")
		}
	}

	return out
}

// wrap breaks text into lines of at most width display columns. Words wider
// than width are placed on their own line.
func wrap(text string, width int) []string {
	if width < 10 {
		width = 10
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string

	current := words[0]
	currentWidth := runewidth.StringWidth(current)

	for _, w := range words[1:] {
		ww := runewidth.StringWidth(w)
		if currentWidth+1+ww > width {
			lines = append(lines, current)
			current = w
			currentWidth = ww

			continue
		}

		current += " " + w
		currentWidth += 1 + ww
	}

	return append(lines, current)
}
