package user

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/vitalis-clinic/backoffice/internal"
	"github.com/vitalis-clinic/backoffice/internal/confirm"
	"github.com/vitalis-clinic/backoffice/internal/content"
	"github.com/vitalis-clinic/backoffice/internal/metrics"
	"github.com/vitalis-clinic/backoffice/internal/transport"
	"github.com/vitalis-clinic/backoffice/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context, q content.PageQuery) (*content.PagedResult[*AdminUser], error)
	GetByID(ctx context.Context, id string) (*AdminUser, error)
	Create(ctx context.Context, dto CreateUserDTO) (*AdminUser, error)
	Update(ctx context.Context, id string, dto UpdateUserDTO) (*AdminUser, error)
	Remove(ctx context.Context, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Confirms *confirm.Manager
	Metrics  metrics.Recorder
}

func NewHandler(svc ServiceAPI, confirms *confirm.Manager, rec metrics.Recorder) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Confirms:    confirms,
		Metrics:     rec,
	}
}

// Routes mounts the staff account endpoints on a router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := content.PageQuery{
		Page:   transport.ParsePage(r),
		Search: transport.ParseSearch(r),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			q.Limit = l
		}
	}

	result, err := h.Service.List(r.Context(), q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordCRUDOperation("users", "list")
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":       result.Data,
		"totalPages": result.TotalPages,
		"totalCount": result.TotalCount,
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordCRUDOperation("users", "create")
	}
	h.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordCRUDOperation("users", "update")
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// Delete removes an account after an approved confirmation, mirroring the
// content collections.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	token := r.Header.Get(content.ConfirmTokenHeader)
	if token == "" {
		h.HandleServiceError(w, internal.ErrConfirmationRequired)
		return
	}

	approved, err := h.Confirms.Consume(token)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordConfirmation(approved)
	}
	if !approved {
		h.HandleServiceError(w, internal.ErrConfirmationRejected)
		return
	}

	if err := h.Service.Remove(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordCRUDOperation("users", "delete")
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
