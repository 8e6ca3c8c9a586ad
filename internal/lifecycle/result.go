package lifecycle

// DeletionStatus describes what a delete did.
type DeletionStatus string

const (
	// Deleted removed a project that was not current.
	Deleted DeletionStatus = "deleted"
	// DeletedCurrent removed the current project; see DeletionResult.NewCurrentID.
	DeletedCurrent DeletionStatus = "deleted_current"
	// DeletedLast removed the only remaining project.
	DeletedLast DeletionStatus = "deleted_last"
	// DeletionBlocked means a guard vetoed the delete.
	DeletionBlocked DeletionStatus = "blocked"
)

// DeletionResult is the outcome of DeleteProject.
type DeletionResult struct {
	Status DeletionStatus `json:"status"`
	// NewCurrentID is set when the policy picked a new current project.
	NewCurrentID string `json:"new_current_id,omitempty"`
}
