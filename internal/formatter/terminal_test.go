package formatter

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"truthbot/internal/models"
)

func TestTerminal_Card(t *testing.T) {
	out := Terminal(sampleVerdict(), 60)

	for _, want := range []string{
		"⚠️ PARTIALLY TRUE",
		"Some parts are accurate, but context matters",
		"Confidence: Medium",
		"Claim: Coffee dehydrates you",
		"Analysis:",
		"Sources:",
		"Contradicts",
		"Limitations:",
		"  • Effects vary with dose",
		"Analyzed 7 web sources",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestTerminal_WrapsAnalysis(t *testing.T) {
	v := sampleVerdict()
	v.Sources = nil
	v.Reasoning = strings.Repeat("word ", 60)

	out := Terminal(v, 40)

	inAnalysis := false

	for _, line := range strings.Split(out, "\n") {
		if line == "Analysis:" {
			inAnalysis = true
			continue
		}

		if inAnalysis && line == "" {
			break
		}

		if inAnalysis && runewidth.StringWidth(line) > 40 {
			t.Errorf("Line exceeds width: %q", line)
		}
	}
}

func TestTerminal_MinimalVerdict(t *testing.T) {
	out := Terminal(models.ParsedVerdict{
		VerdictType: models.VerdictUnverifiable,
		Confidence:  models.ConfidenceLow,
	}, 0)

	if !strings.Contains(out, "❓ UNVERIFIABLE") {
		t.Errorf("Expected unverifiable label, got:\n%s", out)
	}

	if strings.Contains(out, "Sources:") || strings.Contains(out, "Analyzed") {
		t.Errorf("Expected empty sections to be omitted, got:\n%s", out)
	}
}

func TestFollowUp(t *testing.T) {
	for _, vt := range models.VerdictTypes {
		if FollowUp(vt) == DefaultFollowUp {
			t.Errorf("Expected dedicated follow-up for %s", vt)
		}
	}

	if FollowUp("OTHER") != DefaultFollowUp {
		t.Error("Expected default follow-up for unknown verdict")
	}

	if Label(models.VerdictFalse) != "❌ INCORRECT" {
		t.Errorf("Unexpected label %q", Label(models.VerdictFalse))
	}
}

func TestTable(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		body     [][]string
		maxCell  int
		expected []string
	}{
		{
			name:     "Basic table formatting",
			header:   []string{"Header 1", "Header 2"},
			body:     [][]string{{"val 1", "val 2"}},
			maxCell:  40,
			expected: []string{"| Header 1 | Header 2 |", "| -------- | -------- |", "| val 1    | val 2    |"},
		},
		{
			name:     "Minimum width",
			header:   []string{"H1", "H2"},
			body:     [][]string{{"v1", "v2"}},
			maxCell:  40,
			expected: []string{"| H1  | H2  |", "| --- | --- |", "| v1  | v2  |"},
		},
		{
			name:     "Mixed CJK and ASCII",
			header:   []string{"Date", "Event"},
			body:     [][]string{{"2025-01-01", "月球由岩石構成"}, {"2025-01-02", "Short text"}},
			maxCell:  40,
			expected: []string{"| Date       | Event          |", "| ---------- | -------------- |", "| 2025-01-01 | 月球由岩石構成 |", "| 2025-01-02 | Short text     |"},
		},
		{
			name:     "Long cell truncated",
			header:   []string{"URL"},
			body:     [][]string{{"https://example.com/a/very/long/path"}},
			maxCell:  10,
			expected: []string{"| URL        |", "| ---------- |", "| https://e… |"},
		},
		{
			name:     "Pipes escaped and short rows padded",
			header:   []string{"A", "B"},
			body:     [][]string{{"x|y"}},
			maxCell:  40,
			expected: []string{"| A   | B   |", "| --- | --- |", "| x/y |     |"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table(tt.header, tt.body, tt.maxCell)
			if strings.Join(got, "\n") != strings.Join(tt.expected, "\n") {
				t.Errorf("table() = \n%v\nwant \n%v", strings.Join(got, "\n"), strings.Join(tt.expected, "\n"))
			}
		})
	}
}

func TestTerminal_TruncatesLongURL(t *testing.T) {
	url := "https://archive.example/" + strings.Repeat("segment/", 20)
	v := models.ParsedVerdict{
		VerdictType: models.VerdictFalse,
		Confidence:  models.ConfidenceHigh,
		Sources: []models.Source{{
			Title:        "Archive",
			URL:          url,
			Relationship: models.RelationshipContradicts,
			Credibility:  models.CredibilityHigh,
		}},
	}

	out := Terminal(v, DefaultWidth)
	if strings.Contains(out, url) {
		t.Errorf("Expected long URL to be cut, got:\n%s", out)
	}

	if !strings.Contains(out, "| https://archive.example/segment… |") {
		t.Errorf("Expected URL prefix with ellipsis, got:\n%s", out)
	}

	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "| ") && runewidth.StringWidth(line) > DefaultWidth {
			t.Errorf("Expected table row within %d columns, got %q", DefaultWidth, line)
		}
	}
}
