package menu

import (
	"log/slog"
	"net/http"

	"github.com/vitalis-clinic/backoffice/internal"
	"github.com/vitalis-clinic/backoffice/internal/auth"
	"github.com/vitalis-clinic/backoffice/internal/transport"
	"github.com/vitalis-clinic/backoffice/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
}

func NewHandler() *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{BaseHandler: transport.NewBaseHandler(lg)}
}

// GetMenu returns the navigation entries visible to the caller's resolved
// role. No role means an empty menu, not an error.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	role := auth.Role(internal.RoleFromContext(r.Context()))

	entries := Filter(Entries(), role)
	if entries == nil {
		entries = []Entry{}
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// RequireVisibility guards a route group with the same rule that decides
// whether its menu entry renders.
func RequireVisibility(v Visibility, lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := auth.Role(internal.RoleFromContext(r.Context()))

			if !Visible(v, role) {
				lg.Warn("access denied: entry not visible to role", "role", string(role), "path", r.URL.Path)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
