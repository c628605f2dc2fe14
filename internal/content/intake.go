package content

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vitalis-clinic/backoffice/internal/core/events"
	"github.com/vitalis-clinic/backoffice/internal/transport"
	"github.com/vitalis-clinic/backoffice/pkg/logger"
)

// IntakeHandler accepts feedback submissions from the public site. It
// bypasses the admin guard and only ever creates records.
type IntakeHandler struct {
	*transport.BaseHandler
	Service *Service[*Feedback]
	Bus     EventPublisher
}

func NewIntakeHandler(service *Service[*Feedback], bus EventPublisher) *IntakeHandler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &IntakeHandler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Bus:         bus,
	}
}

func (h *IntakeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var fb Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	fb.ID = 0
	fb.IsProcessed = false

	saved, err := h.Service.Save(r.Context(), &fb)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if h.Bus != nil {
		_ = h.Bus.Publish(r.Context(), events.NewFeedbackReceived(saved.ID))
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "received",
		"id":     saved.ID,
	})
}
