// Package hubspot synchronizes lead contacts to the HubSpot CRM: exact-email
// search, idempotent create/update, and bounded retry with a persisted
// sync-status outcome.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/brightsites/leadflow/internal/tenancy"
	"github.com/brightsites/leadflow/pkg/logging"
)

const (
	defaultBaseURL = "https://api.hubapi.com"
	defaultTimeout = 20 * time.Second
)

// TokenSource resolves the bearer token for the tenant on the context;
// implementations may serve per-tenant sealed credentials.
type TokenSource interface {
	Token(ctx context.Context, tenantID string) (string, error)
}

// StaticToken is a TokenSource serving one process-level token.
type StaticToken string

func (s StaticToken) Token(context.Context, string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("hubspot: no token configured")
	}
	return string(s), nil
}

// Contact is the CRM's representation of an upserted contact.
type Contact struct {
	ID string `json:"id"`
}

// UpsertInput describes one create-or-update call. When ExistingID is set a
// targeted update is performed; otherwise a creation call. The idempotency
// key is always attached so a retried call after a timeout is deduplicated
// server-side.
type UpsertInput struct {
	Properties     map[string]string
	IdempotencyKey string
	ExistingID     string
}

// Client is an HTTP client for the CRM contacts API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	tracer     trace.Tracer
	logger     *logging.Logger
}

// NewClient creates a CRM client. baseURL may be empty for the production
// endpoint.
func NewClient(baseURL string, tokens TokenSource, logger *logging.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
		tracer:     otel.Tracer("leadflow.internal.hubspot"),
		logger:     logger,
	}
}

type searchResponse struct {
	Total   int       `json:"total"`
	Results []Contact `json:"results"`
}

func (c *Client) bearer(ctx context.Context) (string, error) {
	tenantID, _ := tenancy.TenantIDFromContext(ctx)
	return c.tokens.Token(ctx, tenantID)
}

// SearchContact queries the CRM for a contact with exactly this email.
// An empty result is not an error; a non-success response is.
func (c *Client) SearchContact(ctx context.Context, email string) (string, bool, error) {
	ctx, span := c.tracer.Start(ctx, "hubspot.search")
	defer span.End()

	payload := map[string]any{
		"filterGroups": []map[string]any{
			{
				"filters": []map[string]any{
					{"propertyName": "email", "operator": "EQ", "value": email},
				},
			},
		},
		"properties": []string{"email"},
		"limit":      1,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", false, fmt.Errorf("hubspot: marshal search payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/crm/v3/objects/contacts/search", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("hubspot: build search request: %w", err)
	}
	if err := c.authorize(ctx, req); err != nil {
		return "", false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", false, fmt.Errorf("hubspot: search request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("hubspot: search failed with status %d", resp.StatusCode)
		span.RecordError(err)
		return "", false, err
	}

	var search searchResponse
	if err := json.Unmarshal(respBody, &search); err != nil {
		return "", false, fmt.Errorf("hubspot: decode search response: %w", err)
	}
	if len(search.Results) == 0 {
		return "", false, nil
	}
	return search.Results[0].ID, true, nil
}

// UpsertContact creates or updates a contact, attaching the idempotency key.
func (c *Client) UpsertContact(ctx context.Context, in UpsertInput) (*Contact, error) {
	ctx, span := c.tracer.Start(ctx, "hubspot.upsert")
	defer span.End()
	span.SetAttributes(attribute.Bool("leadflow.existing_contact", in.ExistingID != ""))

	method := http.MethodPost
	target := c.baseURL + "/crm/v3/objects/contacts"
	if in.ExistingID != "" {
		method = http.MethodPatch
		target += "/" + in.ExistingID
	}

	body, err := json.Marshal(map[string]any{"properties": in.Properties})
	if err != nil {
		return nil, fmt.Errorf("hubspot: marshal upsert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("hubspot: build upsert request: %w", err)
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}
	if in.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", in.IdempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hubspot: upsert request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("hubspot: upsert failed with status %d", resp.StatusCode)
		span.RecordError(err)
		return nil, err
	}

	var contact Contact
	if err := json.Unmarshal(respBody, &contact); err != nil {
		return nil, fmt.Errorf("hubspot: decode upsert response: %w", err)
	}
	return &contact, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	token, err := c.bearer(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return nil
}
