package core

import "time"

// BatchItem is the outcome slot for one PR discovered under a batch's
// repository. Items not yet picked up by a worker report as Queued.
type BatchItem struct {
	PRReference string   `json:"pr_reference"`
	State       JobState `json:"state"`
	Result      *Result  `json:"result,omitempty"`
	Err         *Error   `json:"error,omitempty"`
}

// BatchResult aggregates the per-PR outcomes of one batch run. Items keep
// the discovery order of the underlying PR listing.
type BatchResult struct {
	BatchID        string      `json:"batch_id"`
	Action         ActionKind  `json:"action"`
	RepoReference  string      `json:"repo_reference"`
	Total          int         `json:"total"`
	SucceededCount int         `json:"succeeded_count"`
	FailedCount    int         `json:"failed_count"`
	Items          []BatchItem `json:"items"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Done reports whether every item has reached a terminal state.
func (b *BatchResult) Done() bool {
	return b.SucceededCount+b.FailedCount == b.Total
}
