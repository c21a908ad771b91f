package ratelimit

import (
	"context"
	"strings"

	"github.com/brightsites/leadflow/pkg/logging"
)

// DefaultMaxRequests matches the submission policy: 3 accepted submissions
// per identifier per window; the 4th and beyond are rejected.
const DefaultMaxRequests = 3

// CheckInput carries the two hashed identifiers a submission is limited on.
// Both are consulted independently; exceeding either blocks the request, so
// the email-side limit holds even when the client rotates addresses.
type CheckInput struct {
	EmailIdentifier      string
	ClientAddrIdentifier string
}

// Limiter enforces the dual-key submission limit.
type Limiter struct {
	store  CounterStore
	max    int64
	logger *logging.Logger
}

// NewLimiter creates a limiter over the given counter store. max <= 0 falls
// back to DefaultMaxRequests.
func NewLimiter(store CounterStore, max int, logger *logging.Logger) *Limiter {
	if max <= 0 {
		max = DefaultMaxRequests
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Limiter{store: store, max: int64(max), logger: logger}
}

// Check increments both counters and reports whether the submission is
// allowed. Missing identifiers are a hard rejection, logged so misconfigured
// callers are visible rather than silently bypassing the limiter. Counter
// store failures also fail closed.
func (l *Limiter) Check(ctx context.Context, in CheckInput) bool {
	hasEmail := strings.TrimSpace(in.EmailIdentifier) != ""
	hasClientAddress := strings.TrimSpace(in.ClientAddrIdentifier) != ""
	if !hasEmail || !hasClientAddress {
		l.logger.Error("rate limit check missing identifiers",
			"hasEmail", hasEmail,
			"hasClientAddress", hasClientAddress,
		)
		return false
	}

	emailCount, err := l.store.Incr(ctx, "email:"+in.EmailIdentifier)
	if err != nil {
		l.logger.Error("rate limit counter failed", "error", err)
		return false
	}
	addrCount, err := l.store.Incr(ctx, "addr:"+in.ClientAddrIdentifier)
	if err != nil {
		l.logger.Error("rate limit counter failed", "error", err)
		return false
	}

	return emailCount <= l.max && addrCount <= l.max
}
