package leads

import "context"

// Repository is the insert/update contract against the lead data backend.
// Payloads are opaque string-keyed maps; the pipeline does not own the
// backend's column schema.
type Repository interface {
	// Insert durably creates a lead and returns the created representation.
	// Any failure, including a missing id in the response, means no lead
	// exists and the submission must be reported as failed.
	Insert(ctx context.Context, payload map[string]any) (*Lead, error)

	// Update patches bookkeeping fields by id. Callers must not treat a
	// failure as fatal to the submission; the lead already exists.
	Update(ctx context.Context, id string, fields map[string]any) error

	// GetByID fetches a single lead, for out-of-band resync.
	GetByID(ctx context.Context, id string) (*Lead, error)
}
