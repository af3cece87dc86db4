package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/pr-warden/internal/core"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantSummary  string
		wantFindings int
		wantErr      bool
	}{
		{
			name:        "fenced json block",
			raw:         "```json\n{\"summary\": \"solid change\", \"findings\": []}\n```",
			wantSummary: "solid change",
		},
		{
			name:        "fence without language tag",
			raw:         "```\n{\"summary\": \"fine\"}\n```",
			wantSummary: "fine",
		},
		{
			name:        "prose before the fence",
			raw:         "Here is my review:\n\n```json\n{\"summary\": \"needs work\"}\n```\nHope that helps!",
			wantSummary: "needs work",
		},
		{
			name:        "bare json object",
			raw:         `{"summary": "no fence at all"}`,
			wantSummary: "no fence at all",
		},
		{
			name: "findings are carried through",
			raw: "```json\n" +
				`{"summary": "two problems", "findings": [` +
				`{"file_path": "main.go", "line_number": 10, "severity": "major", "category": "Bug", "comment": "nil deref"},` +
				`{"file_path": "util.go", "line_number": 3, "severity": "minor", "category": "Style", "comment": "naming"}` +
				"]}\n```",
			wantSummary:  "two problems",
			wantFindings: 2,
		},
		{name: "no json at all", raw: "I could not analyze this PR, sorry.", wantErr: true},
		{name: "broken json", raw: "```json\n{\"summary\": \"oops\",}\n```", wantErr: true},
		{name: "missing summary", raw: `{"findings": []}`, wantErr: true},
		{name: "empty output", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, err := parseAnswer(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSummary, answer.Summary)
			assert.Len(t, answer.Findings, tt.wantFindings)
		})
	}
}

func TestFilterBySeverity(t *testing.T) {
	findings := []core.Finding{
		{Severity: "critical", Comment: "sql injection"},
		{Severity: "major", Comment: "unchecked error"},
		{Severity: "minor", Comment: "typo"},
		{Severity: "", Comment: "unranked"},
	}

	tests := []struct {
		name     string
		severity string
		wantLen  int
	}{
		{name: "empty keeps everything", severity: "", wantLen: 4},
		{name: "all keeps everything", severity: core.SeverityAll, wantLen: 4},
		{name: "minor drops only unranked", severity: core.SeverityMinor, wantLen: 3},
		{name: "major keeps major and critical", severity: core.SeverityMajor, wantLen: 2},
		{name: "critical keeps critical only", severity: core.SeverityCritical, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept := filterBySeverity(findings, tt.severity)
			assert.Len(t, kept, tt.wantLen)
		})
	}
}

func TestFilterBySeverityIsCaseInsensitive(t *testing.T) {
	findings := []core.Finding{{Severity: "Critical", Comment: "bad"}}

	kept := filterBySeverity(findings, core.SeverityCritical)

	require.Len(t, kept, 1)
	assert.Equal(t, "bad", kept[0].Comment)
}
