package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/vitalis-clinic/backoffice/internal"
	"github.com/vitalis-clinic/backoffice/internal/metrics"
	"github.com/vitalis-clinic/backoffice/internal/session"
	"github.com/vitalis-clinic/backoffice/internal/transport"
	"github.com/vitalis-clinic/backoffice/pkg/logger"
)

const sessionCookieName = "bo_session"

type Handler struct {
	*transport.BaseHandler
	Service  *Service
	Sessions *session.Manager
	Metrics  metrics.Recorder
}

func NewHandler(svc *Service, sessions *session.Manager) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Sessions:    sessions,
	}
}

// Verify handles the password gate submission. The session cookie is issued
// here if the browser does not carry one yet.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var dto VerifyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := h.ensureSessionCookie(w, r)

	err := h.Service.VerifyGate(r.Context(), sessionID, dto)
	if h.Metrics != nil {
		h.Metrics.RecordGateAttempt(err == nil)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

// Keepalive restamps the session's activity window. Clients call it on a
// fixed interval while a back-office tab is visible.
func (h *Handler) Keepalive(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionIDFromCookie(r)
	if sessionID == "" {
		h.WriteError(w, http.StatusUnauthorized, "no session")
		return
	}

	if err := h.Sessions.Touch(r.Context(), sessionID); err != nil {
		h.Logger.Error("keepalive touch failed", "error", err)
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Logout destroys the session and expires the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionIDFromCookie(r)
	if sessionID != "" {
		if err := h.Sessions.Clear(r.Context(), sessionID); err != nil {
			h.Logger.Error("failed to clear session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Check resolves the caller's role. A missing or broken token is not an
// error: the response degrades to {role: null, isAdmin: false}.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)

	role, ok := h.Service.ResolveRole(r.Context(), token)
	if !ok {
		h.WriteJSON(w, http.StatusOK, CheckResponse{Role: nil, IsAdmin: false})
		return
	}

	roleStr := string(role)
	h.WriteJSON(w, http.StatusOK, CheckResponse{Role: &roleStr, IsAdmin: true})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.Logger.Error("authentication failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.Service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.Logger.Error("token refresh failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// SessionMiddleware gates all admin routes behind a valid verified session.
// Loading refreshes the activity timestamp, so any admin request counts as
// tracked interaction.
func (h *Handler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := h.sessionIDFromCookie(r)

		if h.Sessions.Load(r.Context(), sessionID) != session.StatusValid {
			h.WriteError(w, http.StatusUnauthorized, internal.ErrSessionExpired.Message)
			return
		}

		ctx := internal.ContextWithSessionID(r.Context(), sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RoleContextMiddleware resolves the caller's role from the bearer token and
// stores it in the request context. It never rejects the request; absence of
// a role is decided downstream.
func (h *Handler) RoleContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if role, ok := h.Service.ResolveRole(r.Context(), token); ok {
			r = r.WithContext(internal.ContextWithRole(r.Context(), string(role)))
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) sessionIDFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

func (h *Handler) ensureSessionCookie(w http.ResponseWriter, r *http.Request) string {
	if id := h.sessionIDFromCookie(r); id != "" {
		return id
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(session.DefaultDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
