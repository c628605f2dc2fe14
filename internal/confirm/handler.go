package confirm

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/vitalis-clinic/backoffice/internal/transport"
	"github.com/vitalis-clinic/backoffice/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Manager:     manager,
	}
}

type resolveDTO struct {
	Approved bool `json:"approved"`
}

// RequestConfirmation opens a pending ticket for a destructive action.
func (h *Handler) RequestConfirmation(w http.ResponseWriter, r *http.Request) {
	var details Details
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if details.ConfirmLabel == "" {
		details.ConfirmLabel = "Подтвердить"
	}
	if details.CancelLabel == "" {
		details.CancelLabel = "Отмена"
	}

	token := h.Manager.Request(details)
	h.WriteJSON(w, http.StatusCreated, map[string]string{"token": token})
}

// ResolveConfirmation records the user's answer for a pending ticket.
func (h *Handler) ResolveConfirmation(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var dto resolveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Manager.Resolve(token, dto.Approved); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{"approved": dto.Approved})
}
