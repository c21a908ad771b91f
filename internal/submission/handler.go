package submission

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightsites/leadflow/internal/leads"
	"github.com/brightsites/leadflow/pkg/logging"
)

// Handler exposes the public submission endpoint and the admin resync
// endpoint.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new submission handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Submit handles POST /v1/leads. The response is always JSON with a
// user-facing message; only a persistence failure surfaces as a 500.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, SubmitResponse{
			Success: false,
			Message: msgCheckInputs,
		})
		return
	}

	resp, err := h.service.Submit(r.Context(), req, r.Header)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	status := http.StatusOK
	switch {
	case resp.Success:
	case resp.Message == msgTooMany:
		status = http.StatusTooManyRequests
	default:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}

type resyncResponse struct {
	LeadID     string `json:"lead_id"`
	SyncStatus string `json:"sync_status"`
}

// Resync handles POST /admin/leads/{leadID}/resync.
func (h *Handler) Resync(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	if leadID == "" {
		http.Error(w, "lead id required", http.StatusBadRequest)
		return
	}

	status, err := h.service.Resync(r.Context(), leadID)
	if err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			http.Error(w, "lead not found", http.StatusNotFound)
			return
		}
		h.logger.Error("lead resync failed", "error", err, "lead_id", leadID)
		http.Error(w, "resync failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, resyncResponse{LeadID: leadID, SyncStatus: string(status)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
