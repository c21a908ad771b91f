package secrets

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightsites/leadflow/pkg/logging"
)

// Handler exposes admin endpoints for sealing tenant secrets.
type Handler struct {
	manager *Manager
	store   *Store
	logger  *logging.Logger
}

// NewHandler creates a new secrets handler.
func NewHandler(manager *Manager, store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{manager: manager, store: store, logger: logger}
}

type putSecretRequest struct {
	Value           string `json:"value"`
	RotationVersion int    `json:"rotation_version"`
}

type putSecretResponse struct {
	TenantID        string `json:"tenant_id"`
	Key             string `json:"key"`
	Algorithm       string `json:"algorithm"`
	RotationVersion int    `json:"rotation_version"`
}

// PutSecret handles PUT /admin/tenants/{tenantID}/secrets/{key}. The sealed
// envelope is persisted; the plaintext value is never stored or logged.
func (h *Handler) PutSecret(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	key := chi.URLParam(r, "key")
	if tenantID == "" || key == "" {
		http.Error(w, "tenant id and key required", http.StatusBadRequest)
		return
	}

	var req putSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Value == "" {
		http.Error(w, "value required", http.StatusBadRequest)
		return
	}

	env, err := h.manager.Seal(SealInput{
		TenantID:        tenantID,
		Key:             key,
		Value:           req.Value,
		RotationVersion: req.RotationVersion,
	})
	if err != nil {
		h.logger.Error("failed to seal tenant secret", "error", err, "tenant_id", tenantID, "key", key)
		http.Error(w, "failed to seal secret", http.StatusInternalServerError)
		return
	}

	if err := h.store.Save(r.Context(), env); err != nil {
		h.logger.Error("failed to store tenant secret", "error", err, "tenant_id", tenantID, "key", key)
		http.Error(w, "failed to store secret", http.StatusInternalServerError)
		return
	}

	h.logger.Info("tenant secret sealed", "tenant_id", tenantID, "key", key, "algorithm", env.Algorithm)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(putSecretResponse{
		TenantID:        env.TenantID,
		Key:             env.Key,
		Algorithm:       env.Algorithm,
		RotationVersion: env.RotationVersion,
	})
}
