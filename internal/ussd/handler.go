package ussd

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/telehealth-ussd/internal/interactions"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

const maxCallbackBytes = 16 << 10

// InteractionLister reads the audit trail for admin inspection.
type InteractionLister interface {
	ListBySession(ctx context.Context, sessionID string, limit int) ([]interactions.Interaction, error)
}

// Handler wires gateway callbacks and admin requests to the service.
type Handler struct {
	service *Service
	history InteractionLister
	logger  *logging.Logger
}

// NewHandler creates a USSD handler. history may be nil.
func NewHandler(service *Service, history InteractionLister, logger *logging.Logger) *Handler {
	if service == nil {
		panic("ussd: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		history: history,
		logger:  logger,
	}
}

// Callback handles POST /ussd. The gateway posts form fields; JSON bodies
// with the same keys are accepted for testing tools.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCallbackBytes)

	req, err := decodeCallback(r)
	if err != nil {
		h.logger.Warn("failed to decode ussd callback", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reply, err := h.service.Handle(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to handle ussd callback", "error", err)
		http.Error(w, "Failed to handle callback", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(Frame(reply)))
}

func decodeCallback(r *http.Request) (Request, error) {
	var req Request
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.SessionID = r.Form.Get("sessionId")
	req.ServiceCode = r.Form.Get("serviceCode")
	req.PhoneNumber = r.Form.Get("phoneNumber")
	req.Text = r.Form.Get("text")
	return req, nil
}

type sessionView struct {
	Session      *Session                   `json:"session"`
	Interactions []interactions.Interaction `json:"interactions,omitempty"`
}

// GetSession handles GET /admin/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := h.service.Session(r.Context(), id)
	if errors.Is(err, ErrSessionNotFound) {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to load session", "session_id", id, "error", err)
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}

	view := sessionView{Session: sess}
	if h.history != nil {
		items, err := h.history.ListBySession(r.Context(), id, 50)
		if err != nil {
			h.logger.Warn("failed to load session interactions", "session_id", id, "error", err)
		}
		view.Interactions = items
	}
	h.writeJSON(w, http.StatusOK, view)
}

// DeleteSession handles DELETE /admin/sessions/{id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.EndSession(r.Context(), id); err != nil {
		h.logger.Error("failed to delete session", "session_id", id, "error", err)
		http.Error(w, "Failed to delete session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
