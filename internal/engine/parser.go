package engine

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sevigo/pr-warden/internal/core"
)

var jsonFenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// modelAnswer mirrors the JSON shape every prompt asks the model for.
type modelAnswer struct {
	Summary  string         `json:"summary"`
	Findings []core.Finding `json:"findings"`
}

// parseAnswer extracts the structured answer from raw model output. It
// tolerates the usual quirks: leading prose before the fence, a fence
// without the json tag, or a bare JSON object with no fence at all.
func parseAnswer(raw string) (*modelAnswer, error) {
	candidate := ""
	if m := jsonFenceRegex.FindStringSubmatch(raw); len(m) == 2 {
		candidate = m[1]
	} else {
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
			candidate = trimmed
		}
	}
	if candidate == "" {
		return nil, fmt.Errorf("model output contains no JSON block")
	}

	var answer modelAnswer
	if err := json.Unmarshal([]byte(candidate), &answer); err != nil {
		return nil, fmt.Errorf("model output is not valid JSON: %w", err)
	}
	if answer.Summary == "" {
		return nil, fmt.Errorf("model output is missing the summary field")
	}
	return &answer, nil
}

// severityRank orders the filter values; findings below the requested
// rank are dropped.
func severityRank(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case core.SeverityCritical:
		return 3
	case core.SeverityMajor:
		return 2
	case core.SeverityMinor:
		return 1
	default:
		return 0
	}
}

// filterBySeverity keeps findings at or above the requested severity.
// An empty or "all" filter keeps everything.
func filterBySeverity(findings []core.Finding, severity string) []core.Finding {
	if severity == "" || severity == core.SeverityAll {
		return findings
	}
	threshold := severityRank(severity)

	var kept []core.Finding
	for _, f := range findings {
		if severityRank(f.Severity) >= threshold {
			kept = append(kept, f)
		}
	}
	return kept
}
