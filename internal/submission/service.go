// Package submission composes the lead-intake pipeline: request provenance
// validation, dual-key rate limiting, durable lead persistence, and
// best-effort CRM synchronization with persisted status bookkeeping.
package submission

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/brightsites/leadflow/internal/hubspot"
	"github.com/brightsites/leadflow/internal/leads"
	"github.com/brightsites/leadflow/internal/observability/metrics"
	"github.com/brightsites/leadflow/internal/ratelimit"
	"github.com/brightsites/leadflow/internal/security"
	"github.com/brightsites/leadflow/pkg/logging"
)

const (
	msgThanks      = "Thank you for your message! We'll be in touch soon."
	msgInvalid     = "Invalid request. Please refresh the page and try again."
	msgCheckInputs = "Please check your form inputs and try again."
	msgTooMany     = "Too many submissions. Please try again later."
	msgBlocked     = "Unable to submit your message. Please try again."
	msgGeneric     = "Something went wrong. Please try again or email us directly."
)

// ErrValidation marks user-input problems; handlers map it to a 400.
var ErrValidation = errors.New("submission: invalid input")

// SubmitRequest is the ephemeral, request-scoped form payload. Website is a
// honeypot field real users never fill in.
type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Website string `json:"website"`
}

// SubmitResponse is the user-visible outcome. Insert success is the only
// requirement for Success; CRM synchronization issues stay invisible to the
// submitter.
type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LeadID  string `json:"lead_id,omitempty"`
}

// Service orchestrates a submission end to end.
type Service struct {
	validator *security.Validator
	limiter   *ratelimit.Limiter
	repo      leads.Repository
	syncer    *hubspot.Syncer
	metrics   *metrics.PipelineMetrics
	logger    *logging.Logger
	tracer    trace.Tracer

	siteHost        string
	honeypotEnabled bool
	now             func() time.Time
}

// Config wires the Service's collaborators.
type Config struct {
	Validator       *security.Validator
	Limiter         *ratelimit.Limiter
	Repo            leads.Repository
	Syncer          *hubspot.Syncer
	Metrics         *metrics.PipelineMetrics
	Logger          *logging.Logger
	SiteHost        string
	HoneypotEnabled bool
}

// NewService creates the submission orchestrator.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		validator:       cfg.Validator,
		limiter:         cfg.Limiter,
		repo:            cfg.Repo,
		syncer:          cfg.Syncer,
		metrics:         cfg.Metrics,
		logger:          logger,
		tracer:          otel.Tracer("leadflow.internal.submission"),
		siteHost:        cfg.SiteHost,
		honeypotEnabled: cfg.HoneypotEnabled,
		now:             time.Now,
	}
}

type sanitized struct {
	email     string
	name      string
	phone     string
	message   string
	emailHash string
	addrHash  string
}

// Submit runs the pipeline: validate origin, rate-limit, persist, sync.
// A non-nil error means no lead was durably recorded; every other outcome
// returns a user-facing response.
func (s *Service) Submit(ctx context.Context, req SubmitRequest, headers http.Header) (SubmitResponse, error) {
	ctx, span := s.tracer.Start(ctx, "contact_form.submit")
	defer span.End()

	if !s.validator.ValidateOrigin(headers, s.siteHost) {
		s.logger.Error("csrf: invalid origin on form submission")
		s.metrics.ObserveSubmission("rejected_origin")
		return SubmitResponse{Success: false, Message: msgInvalid}, nil
	}

	if s.honeypotEnabled && req.Website != "" {
		s.logger.Warn("honeypot field triggered on form submission")
		s.metrics.ObserveSubmission("rejected_honeypot")
		return SubmitResponse{Success: false, Message: msgBlocked}, nil
	}

	if err := validate(req); err != nil {
		s.metrics.ObserveSubmission("rejected_validation")
		return SubmitResponse{Success: false, Message: msgCheckInputs}, nil
	}

	clientAddr := s.validator.ClientIP(headers)
	data := sanitize(req, clientAddr)
	span.SetAttributes(
		attribute.String("email_hash", data.emailHash),
		attribute.String("ip_hash", data.addrHash),
	)

	allowed := s.limiter.Check(ctx, ratelimit.CheckInput{
		EmailIdentifier:      data.emailHash,
		ClientAddrIdentifier: data.addrHash,
	})
	if !allowed {
		s.logger.Warn("rate limit exceeded for form submission",
			"email_hash", data.emailHash,
			"ip_hash", data.addrHash,
		)
	}

	lead, err := s.insertLead(ctx, data, !allowed)
	if err != nil {
		s.metrics.ObserveSubmission("failed")
		return SubmitResponse{Success: false, Message: msgGeneric}, err
	}

	s.syncLead(ctx, lead.ID, data)

	// The lead was persisted for review, but a throttled caller gets no
	// handle to it.
	if !allowed {
		s.metrics.ObserveSubmission("rate_limited")
		return SubmitResponse{Success: false, Message: msgTooMany}, nil
	}

	s.metrics.ObserveSubmission("accepted")
	return SubmitResponse{Success: true, Message: msgThanks, LeadID: lead.ID}, nil
}

func validate(req SubmitRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if strings.TrimSpace(req.Email) == "" || !strings.Contains(req.Email, "@") {
		return fmt.Errorf("%w: valid email required", ErrValidation)
	}
	return nil
}

func sanitize(req SubmitRequest, clientAddr string) sanitized {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	return sanitized{
		email:     email,
		name:      html.EscapeString(strings.TrimSpace(req.Name)),
		phone:     html.EscapeString(strings.TrimSpace(req.Phone)),
		message:   html.EscapeString(req.Message),
		emailHash: hashEmail(email),
		addrHash:  hashClientAddr(clientAddr),
	}
}

func (s *Service) insertLead(ctx context.Context, data sanitized, suspicious bool) (*leads.Lead, error) {
	payload := map[string]any{
		"name":                    data.name,
		"email":                   data.email,
		"phone":                   data.phone,
		"message":                 data.message,
		"is_suspicious":           suspicious,
		"suspicion_reason":        nil,
		"hubspot_sync_status":     string(leads.SyncPending),
		"hubspot_retry_count":     0,
		"hubspot_idempotency_key": nil,
	}
	if suspicious {
		payload["suspicion_reason"] = "rate_limit"
	}

	lead, err := s.repo.Insert(ctx, payload)
	if err != nil {
		s.logger.Error("lead insert failed", "error", err, "email_hash", data.emailHash)
		return nil, err
	}
	return lead, nil
}

// syncLead runs the best-effort CRM sync and records the outcome on the
// lead row. Update failures are logged, never re-raised: the user-visible
// submission already succeeded at insert.
func (s *Service) syncLead(ctx context.Context, leadID string, data sanitized) {
	started := s.now()
	attemptedAt := started.UTC().Format(time.RFC3339)
	key := idempotencyKey(leadID, data.emailHash)

	result := s.syncer.RetryUpsert(ctx, crmProperties(data), key, data.emailHash)
	elapsed := s.now().Sub(started).Seconds()

	if result.Contact != nil {
		s.metrics.ObserveSync(string(leads.SyncSynced), result.Attempts, elapsed)
		err := s.repo.Update(ctx, leadID, map[string]any{
			"hubspot_contact_id":        result.Contact.ID,
			"hubspot_sync_status":       string(leads.SyncSynced),
			"hubspot_last_sync_attempt": attemptedAt,
			"hubspot_retry_count":       result.Attempts,
			"hubspot_idempotency_key":   key,
		})
		if err != nil {
			s.logger.Error("failed to update crm sync status", "error", err, "lead_id", leadID)
			return
		}
		s.logger.Info("crm contact synced", "lead_id", leadID, "email_hash", data.emailHash)
		return
	}

	s.metrics.ObserveSync(string(leads.SyncNeedsSync), result.Attempts, elapsed)
	s.logger.Error("crm sync failed", "error", result.Err, "lead_id", leadID, "email_hash", data.emailHash)
	err := s.repo.Update(ctx, leadID, map[string]any{
		"hubspot_sync_status":       string(leads.SyncNeedsSync),
		"hubspot_last_sync_attempt": attemptedAt,
		"hubspot_retry_count":       result.Attempts,
		"hubspot_idempotency_key":   key,
	})
	if err != nil {
		s.logger.Error("failed to update crm sync status", "error", err, "lead_id", leadID)
	}
}

func crmProperties(data sanitized) map[string]string {
	first, last := splitName(data.name)
	props := map[string]string{
		"email":     data.email,
		"firstname": first,
	}
	if last != "" {
		props["lastname"] = last
	}
	if data.phone != "" {
		props["phone"] = data.phone
	}
	return props
}

func splitName(fullName string) (first, last string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return fullName, ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// Resync re-runs the CRM sync for a persisted lead, moving a needs_sync
// record to synced when the CRM has recovered. Used by the admin endpoint.
func (s *Service) Resync(ctx context.Context, leadID string) (leads.SyncStatus, error) {
	ctx, span := s.tracer.Start(ctx, "contact_form.resync")
	defer span.End()

	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return "", err
	}
	if lead.HubSpotSyncStatus == leads.SyncSynced {
		return leads.SyncSynced, nil
	}

	// Stored fields were sanitized at insert; re-escaping here would send
	// double-encoded entities to the CRM.
	data := sanitized{
		email:     lead.Email,
		name:      lead.Name,
		phone:     lead.Phone,
		message:   lead.Message,
		emailHash: hashEmail(lead.Email),
	}
	span.SetAttributes(attribute.String("email_hash", data.emailHash))

	s.syncLead(ctx, lead.ID, data)

	updated, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return "", err
	}
	return updated.HubSpotSyncStatus, nil
}
