package models

// Work-item status codes produced by the assignment workflow. Upstream
// ingestion writes its own codes (0, 1, 10000, ...); anything outside this
// set means the item is not currently owned by the review workflow.
const (
	StatusAssigned              = 25000
	StatusResolvedPendingReview = 25001
	StatusUnassignedAfterReview = 25002
)

// WorkflowOwned reports whether a status code was written by the review
// workflow, as opposed to the ingestion pipeline.
func WorkflowOwned(status int) bool {
	switch status {
	case StatusAssigned, StatusResolvedPendingReview, StatusUnassignedAfterReview:
		return true
	}
	return false
}
