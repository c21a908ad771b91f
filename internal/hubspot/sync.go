package hubspot

import (
	"context"
	"time"

	"github.com/brightsites/leadflow/pkg/logging"
)

const (
	defaultMaxRetries    = 3
	defaultRetryBase     = 250 * time.Millisecond
	defaultRetryMaxDelay = 2 * time.Second
)

// SyncResult is the discriminated outcome of a bounded retry run. Exactly
// one of Contact or Err is set; Attempts is recorded regardless, so the
// caller's status transition is a pure function of this value.
type SyncResult struct {
	Contact  *Contact
	Attempts int
	Err      error
}

// Syncer runs search-then-upsert with bounded retry on transient failure.
// It never panics past this boundary; exhaustion is returned, not thrown.
type Syncer struct {
	client        *Client
	maxRetries    int
	retryBase     time.Duration
	retryMaxDelay time.Duration
	logger        *logging.Logger
	sleep         func(time.Duration)
}

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer)

// WithRetryPolicy overrides the retry bound and backoff delays.
func WithRetryPolicy(maxRetries int, base, maxDelay time.Duration) SyncerOption {
	return func(s *Syncer) {
		if maxRetries > 0 {
			s.maxRetries = maxRetries
		}
		if base > 0 {
			s.retryBase = base
		}
		if maxDelay > 0 {
			s.retryMaxDelay = maxDelay
		}
	}
}

// withSleep replaces the backoff sleeper. Tests only.
func withSleep(sleep func(time.Duration)) SyncerOption {
	return func(s *Syncer) { s.sleep = sleep }
}

// NewSyncer creates a Syncer over the CRM client.
func NewSyncer(client *Client, logger *logging.Logger, opts ...SyncerOption) *Syncer {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Syncer{
		client:        client,
		maxRetries:    defaultMaxRetries,
		retryBase:     defaultRetryBase,
		retryMaxDelay: defaultRetryMaxDelay,
		logger:        logger,
		sleep:         time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxRetries exposes the configured retry bound for status bookkeeping.
func (s *Syncer) MaxRetries() int {
	return s.maxRetries
}

// RetryUpsert attempts search-then-upsert up to the retry bound. Search runs
// inside each attempt so an existing contact is updated rather than
// duplicated even when the contact was created by a previous, timed-out
// attempt (the idempotency key covers the transport-level duplicate).
func (s *Syncer) RetryUpsert(ctx context.Context, properties map[string]string, idempotencyKey, emailHash string) SyncResult {
	var lastErr error

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		contact, err := s.upsertOnce(ctx, properties, idempotencyKey)
		if err == nil {
			return SyncResult{Contact: contact, Attempts: attempt}
		}

		lastErr = err
		if attempt < s.maxRetries {
			s.logger.Warn("crm sync retry scheduled", "attempt", attempt, "email_hash", emailHash)
			s.sleep(s.retryDelay(attempt))
		}
	}

	return SyncResult{Attempts: s.maxRetries, Err: lastErr}
}

func (s *Syncer) upsertOnce(ctx context.Context, properties map[string]string, idempotencyKey string) (*Contact, error) {
	existingID, _, err := s.client.SearchContact(ctx, properties["email"])
	if err != nil {
		return nil, err
	}
	return s.client.UpsertContact(ctx, UpsertInput{
		Properties:     properties,
		IdempotencyKey: idempotencyKey,
		ExistingID:     existingID,
	})
}

// retryDelay is exponential from the base delay, capped at the max delay.
func (s *Syncer) retryDelay(attempt int) time.Duration {
	delay := s.retryBase << (attempt - 1)
	if delay > s.retryMaxDelay {
		delay = s.retryMaxDelay
	}
	return delay
}
