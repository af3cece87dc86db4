// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

// ActionKind enumerates the supported analysis operations.
type ActionKind string

const (
	ActionReview       ActionKind = "review"
	ActionDescribe     ActionKind = "describe"
	ActionImprove      ActionKind = "improve"
	ActionDetectIssues ActionKind = "issues"
	ActionAsk          ActionKind = "ask"
	ActionBatch        ActionKind = "batch"
)

// IsValid reports whether the kind is one of the closed set of actions.
func (a ActionKind) IsValid() bool {
	switch a {
	case ActionReview, ActionDescribe, ActionImprove, ActionDetectIssues, ActionAsk, ActionBatch:
		return true
	}
	return false
}

// Severity filter values accepted by the issues action.
const (
	SeverityAll      = "all"
	SeverityCritical = "critical"
	SeverityMajor    = "major"
	SeverityMinor    = "minor"
)

// OptionSet carries the optional per-request tuning knobs. Every field is
// optional; actions ignore the fields they do not use.
type OptionSet struct {
	// ExtraInstructions is free-form guidance appended to the analysis prompt.
	ExtraInstructions string `json:"extra_instructions,omitempty"`
	// Severity filters issue findings: all, critical, major, or minor.
	Severity string `json:"severity,omitempty"`
	// Temperature overrides the model sampling temperature when set.
	Temperature *float64 `json:"ai_temperature,omitempty"`
}

// ActionRequest is the inbound request shape shared by every action.
// PRReference identifies a single pull request for all actions except
// batch, which targets a repository instead.
type ActionRequest struct {
	Action        ActionKind `json:"action"`
	PRReference   string     `json:"pr_reference,omitempty"`
	RepoReference string     `json:"repo_reference,omitempty"`
	// MaxItems caps the PRs a batch request fans out to. A nil value means
	// the configured default; an explicit zero yields an empty batch.
	MaxItems *int `json:"max_items,omitempty"`
	// Question is required by the ask action and ignored by all others.
	Question string `json:"question,omitempty"`
	// BatchAction names the per-PR action a batch request fans out to.
	BatchAction ActionKind `json:"batch_action,omitempty"`
	Options     OptionSet  `json:"options,omitempty"`
}
