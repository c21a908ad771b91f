package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/brightsites/leadflow/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// RESTRepository talks to the lead data backend over its REST contract:
// POST with a JSON array body for insert (the backend expects a batch shape
// even for one row), PATCH with an id-equality filter for update.
type RESTRepository struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     *logging.Logger
}

var _ Repository = (*RESTRepository)(nil)

// NewRESTRepository creates a repository against the backend at baseURL,
// authenticating with the service-role key.
func NewRESTRepository(baseURL, serviceKey string, logger *logging.Logger) *RESTRepository {
	if logger == nil {
		logger = logging.Default()
	}
	return &RESTRepository{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		tracer:     otel.Tracer("leadflow.internal.leads"),
		logger:     logger,
	}
}

func (r *RESTRepository) leadsURL() string {
	return r.baseURL + "/rest/v1/leads"
}

func (r *RESTRepository) setAuthHeaders(req *http.Request) {
	req.Header.Set("apikey", r.serviceKey)
	req.Header.Set("Authorization", "Bearer "+r.serviceKey)
	req.Header.Set("Content-Type", "application/json")
}

// Insert creates a lead and returns the backend's representation of the
// created row. A non-success response or a row without an id is fatal.
func (r *RESTRepository) Insert(ctx context.Context, payload map[string]any) (*Lead, error) {
	ctx, span := r.tracer.Start(ctx, "leads.insert")
	defer span.End()

	body, err := json.Marshal([]map[string]any{payload})
	if err != nil {
		return nil, fmt.Errorf("leads: marshal insert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.leadsURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("leads: build insert request: %w", err)
	}
	r.setAuthHeaders(req)
	req.Header.Set("Prefer", "return=representation")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("leads: insert request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("leads: insert failed with status %d: %s", resp.StatusCode, respBody)
		span.RecordError(err)
		return nil, err
	}

	var rows []Lead
	if err := json.Unmarshal(respBody, &rows); err != nil {
		return nil, fmt.Errorf("leads: decode insert response: %w", err)
	}
	if len(rows) == 0 || strings.TrimSpace(rows[0].ID) == "" {
		span.RecordError(ErrMissingID)
		return nil, ErrMissingID
	}

	lead := rows[0]
	return &lead, nil
}

// Update patches the given fields on the lead identified by id.
func (r *RESTRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	ctx, span := r.tracer.Start(ctx, "leads.update")
	defer span.End()

	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("leads: marshal update fields: %w", err)
	}

	target := r.leadsURL() + "?id=eq." + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("leads: build update request: %w", err)
	}
	r.setAuthHeaders(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("leads: update request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("leads: update failed with status %d", resp.StatusCode)
		span.RecordError(err)
		return err
	}
	return nil
}

// GetByID fetches a single lead by id.
func (r *RESTRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	ctx, span := r.tracer.Start(ctx, "leads.get")
	defer span.End()

	target := r.leadsURL() + "?id=eq." + url.QueryEscape(id) + "&select=*"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("leads: build get request: %w", err)
	}
	r.setAuthHeaders(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("leads: get request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("leads: get failed with status %d", resp.StatusCode)
	}

	var rows []Lead
	if err := json.Unmarshal(respBody, &rows); err != nil {
		return nil, fmt.Errorf("leads: decode get response: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	lead := rows[0]
	return &lead, nil
}
