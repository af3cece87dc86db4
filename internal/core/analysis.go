package core

import (
	"context"
	"time"
)

// Finding represents a single piece of feedback for a specific location
// in the change set.
type Finding struct {
	FilePath   string `json:"file_path,omitempty"`
	LineNumber int    `json:"line_number,omitempty"`
	Severity   string `json:"severity,omitempty"` // e.g., "critical", "major", "minor"
	Category   string `json:"category,omitempty"` // e.g., "Bug", "Security", "Style"
	Comment    string `json:"comment"`
}

// Result is the structured payload produced by one analysis call. It is
// treated as an immutable value once produced.
type Result struct {
	Action      ActionKind `json:"action"`
	Target      string     `json:"target"`
	Summary     string     `json:"summary"`
	Findings    []Finding  `json:"findings,omitempty"`
	Raw         string     `json:"raw,omitempty"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// Analyzer is the contract to the language-model-backed analysis engine.
// Implementations are expected to be safe for concurrent use.
//
//go:generate mockgen -destination=../../mocks/mock_analyzer.go -package=mocks . Analyzer
type Analyzer interface {
	// Analyze runs one action against one target. The question argument is
	// only meaningful for the ask action and empty otherwise.
	Analyze(ctx context.Context, action ActionKind, target, question string, opts OptionSet) (*Result, error)
}

// PRLister enumerates open pull requests for a repository, in the order
// the source-control host returns them.
type PRLister interface {
	ListOpenPRs(ctx context.Context, repoRef string, maxItems int) ([]string, error)
}
