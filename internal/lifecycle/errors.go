package lifecycle

import "errors"

var (
	// ErrImportFailed is returned when a settings document cannot become a project.
	ErrImportFailed = errors.New("settings import failed")

	// ErrDeletionBlocked is returned when a DeletionGuard vetoes a delete.
	ErrDeletionBlocked = errors.New("project deletion blocked")

	// ErrInvalidPolicy is returned for an unknown delete policy.
	ErrInvalidPolicy = errors.New("invalid delete policy")
)
