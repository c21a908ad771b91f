package secrets

import (
	"context"
	"errors"

	"github.com/brightsites/leadflow/pkg/logging"
)

// CRM credential key name under which a tenant's private-app token is sealed.
const HubSpotTokenKey = "hubspot_token"

// TokenSource resolves the CRM bearer token for a tenant. The envelope-backed
// source prefers a per-tenant sealed token and falls back to the
// process-level token so single-tenant deployments need no database row.
type TokenSource struct {
	store    *Store
	manager  *Manager
	fallback string
	logger   *logging.Logger
}

// NewTokenSource builds a TokenSource. store may be nil when no database is
// configured; only the fallback token is served then.
func NewTokenSource(store *Store, manager *Manager, fallback string, logger *logging.Logger) *TokenSource {
	if logger == nil {
		logger = logging.Default()
	}
	return &TokenSource{store: store, manager: manager, fallback: fallback, logger: logger}
}

// Token returns the CRM token for the tenant. An envelope that fails
// integrity verification is an error, not a silent fallback: a tampered
// secret must surface as "unavailable".
func (t *TokenSource) Token(ctx context.Context, tenantID string) (string, error) {
	if t.store == nil || t.manager == nil || tenantID == "" {
		return t.fallbackToken()
	}

	env, err := t.store.Get(ctx, tenantID, HubSpotTokenKey)
	if errors.Is(err, ErrNotFound) {
		return t.fallbackToken()
	}
	if err != nil {
		return "", err
	}

	token, err := t.manager.Reveal(env)
	if err != nil {
		t.logger.Error("tenant crm token failed integrity check", "tenant_id", tenantID)
		return "", err
	}
	return token, nil
}

func (t *TokenSource) fallbackToken() (string, error) {
	if t.fallback == "" {
		return "", errors.New("secrets: no crm token configured")
	}
	return t.fallback, nil
}
