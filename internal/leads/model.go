package leads

import "time"

// SyncStatus tracks whether a lead has been mirrored to the CRM.
type SyncStatus string

const (
	SyncPending   SyncStatus = "pending"
	SyncSynced    SyncStatus = "synced"
	SyncNeedsSync SyncStatus = "needs_sync"
)

// Lead is the durable lead record as returned by the data backend. The
// backend assigns the id on insert; CRM bookkeeping fields are mutated by
// the submission pipeline after each sync attempt. Leads are never deleted
// by this pipeline.
type Lead struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	Email                 string     `json:"email"`
	Phone                 string     `json:"phone"`
	Message               string     `json:"message"`
	IsSuspicious          bool       `json:"is_suspicious"`
	SuspicionReason       *string    `json:"suspicion_reason"`
	HubSpotContactID      *string    `json:"hubspot_contact_id"`
	HubSpotSyncStatus     SyncStatus `json:"hubspot_sync_status"`
	HubSpotRetryCount     int        `json:"hubspot_retry_count"`
	HubSpotIdempotencyKey *string    `json:"hubspot_idempotency_key"`
	HubSpotLastSyncAt     *time.Time `json:"hubspot_last_sync_attempt"`
	CreatedAt             time.Time  `json:"created_at"`
}
