// Package registry maps inbound action names onto the closed set of
// supported analysis actions and describes their capabilities.
package registry

import (
	"strings"

	"github.com/sevigo/pr-warden/internal/core"
)

// Capability describes one supported action for client self-discovery.
type Capability struct {
	Action        core.ActionKind `json:"action"`
	Description   string          `json:"description"`
	SupportsAsync bool            `json:"supports_async"`
	Features      []string        `json:"features"`
}

// Registry is a pure lookup table from action name to ActionKind. It has
// no side effects and no failure mode beyond an unknown name.
type Registry struct {
	capabilities []Capability
	byName       map[string]core.ActionKind
}

// New builds the registry with every supported action.
func New() *Registry {
	caps := []Capability{
		{
			Action:        core.ActionReview,
			Description:   "Perform comprehensive code review",
			SupportsAsync: true,
			Features:      []string{"logic-review", "best-practices", "security-check", "performance-analysis"},
		},
		{
			Action:        core.ActionDescribe,
			Description:   "Generate PR description",
			SupportsAsync: true,
			Features:      []string{"summary", "change-analysis", "impact-assessment"},
		},
		{
			Action:        core.ActionImprove,
			Description:   "Code improvement suggestions",
			SupportsAsync: true,
			Features:      []string{"optimization", "readability", "style-guide", "refactoring"},
		},
		{
			Action:        core.ActionDetectIssues,
			Description:   "Detect potential issues",
			SupportsAsync: false,
			Features:      []string{"bug-detection", "logic-errors", "edge-cases"},
		},
		{
			Action:        core.ActionAsk,
			Description:   "Ask questions about a PR",
			SupportsAsync: false,
			Features:      []string{"custom-questions", "impact-analysis"},
		},
		{
			Action:        core.ActionBatch,
			Description:   "Process multiple PRs of one repository",
			SupportsAsync: true,
			Features:      []string{"bulk-processing", "partial-failure-isolation"},
		},
	}

	byName := make(map[string]core.ActionKind, len(caps)+2)
	for _, c := range caps {
		byName[string(c.Action)] = c.Action
	}
	// Accepted spellings seen in the wild.
	byName["detect-issues"] = core.ActionDetectIssues
	byName["detect_issues"] = core.ActionDetectIssues

	return &Registry{capabilities: caps, byName: byName}
}

// Resolve maps an action name to its kind. The second return value is
// false for unknown names; callers treat that as a normal negative
// result, not a failure.
func (r *Registry) Resolve(name string) (core.ActionKind, bool) {
	kind, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return kind, ok
}

// Capabilities returns the supported actions in a stable order.
func (r *Registry) Capabilities() []Capability {
	out := make([]Capability, len(r.capabilities))
	copy(out, r.capabilities)
	return out
}

// SupportsAsync reports whether the action has an asynchronous variant.
func (r *Registry) SupportsAsync(kind core.ActionKind) bool {
	for _, c := range r.capabilities {
		if c.Action == kind {
			return c.SupportsAsync
		}
	}
	return false
}
