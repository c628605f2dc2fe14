package content

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/vitalis-clinic/backoffice/internal"
	"github.com/vitalis-clinic/backoffice/internal/confirm"
	"github.com/vitalis-clinic/backoffice/internal/metrics"
	"github.com/vitalis-clinic/backoffice/internal/transport"
	"github.com/vitalis-clinic/backoffice/pkg/logger"
)

// ConfirmTokenHeader carries the resolved confirmation token on DELETE
// requests.
const ConfirmTokenHeader = "X-Confirm-Token"

// Handler serves one managed collection over HTTP.
type Handler[T Record] struct {
	*transport.BaseHandler
	Service  *Service[T]
	Confirms *confirm.Manager
	Metrics  metrics.Recorder
}

func NewHandler[T Record](service *Service[T], confirms *confirm.Manager, rec metrics.Recorder) *Handler[T] {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler[T]{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Confirms:    confirms,
		Metrics:     rec,
	}
}

// Routes mounts the collection's admin endpoints on a router.
func (h *Handler[T]) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List serves one page of records with collection totals and page links.
func (h *Handler[T]) List(w http.ResponseWriter, r *http.Request) {
	q := PageQuery{
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
		h.Metrics.RecordCRUDOperation(h.Service.Name(), "list")
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":       result.Data,
		"totalPages": result.TotalPages,
		"totalCount": result.TotalCount,
		"links":      h.pageLinks(r.URL.Path, result, q.Search),
	})
}

func (h *Handler[T]) Create(w http.ResponseWriter, r *http.Request) {
	rec := h.Service.NewRecord()
	if err := json.NewDecoder(r.Body).Decode(rec); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec.SetRecordID(0)

	saved, err := h.Service.Save(r.Context(), rec)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordCRUDOperation(h.Service.Name(), "create")
	}
	h.WriteJSON(w, http.StatusCreated, saved)
}

func (h *Handler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	rec := h.Service.NewRecord()
	if err := json.NewDecoder(r.Body).Decode(rec); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec.SetRecordID(id)

	saved, err := h.Service.Save(r.Context(), rec)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordCRUDOperation(h.Service.Name(), "update")
	}
	h.WriteJSON(w, http.StatusOK, saved)
}

// Delete removes a record. The request must carry a confirmation token
// that was resolved with approval; a token resolved with a refusal, or no
// token at all, means the DELETE is never executed.
func (h *Handler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	token := r.Header.Get(ConfirmTokenHeader)
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
		h.Metrics.RecordCRUDOperation(h.Service.Name(), "delete")
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler[T]) recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		h.WriteError(w, http.StatusBadRequest, "invalid record ID")
		return 0, false
	}
	return id, true
}

func (h *Handler[T]) pageLinks(path string, result *PagedResult[T], search string) map[string]string {
	links := map[string]string{
		"self": transport.PageURL(path, result.Page, search),
	}
	if result.Page > 1 {
		links["prev"] = transport.PageURL(path, result.Page-1, search)
	}
	if result.Page < result.TotalPages {
		links["next"] = transport.PageURL(path, result.Page+1, search)
	}
	return links
}
