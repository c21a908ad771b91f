package leads

import "errors"

var (
	// ErrMissingID is returned when the backend's insert response lacks a
	// usable id. Downstream idempotency depends on a stable id, so this is
	// fatal to the submission.
	ErrMissingID = errors.New("leads: insert returned row without id")

	// ErrNotFound is returned when no lead matches the requested id.
	ErrNotFound = errors.New("leads: lead not found")
)
