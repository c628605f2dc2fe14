package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/vitalis-clinic/backoffice/internal/auth"
	"github.com/vitalis-clinic/backoffice/internal/confirm"
	"github.com/vitalis-clinic/backoffice/internal/content"
	"github.com/vitalis-clinic/backoffice/internal/menu"
	"github.com/vitalis-clinic/backoffice/internal/metrics"
	"github.com/vitalis-clinic/backoffice/internal/transport/middleware"
	"github.com/vitalis-clinic/backoffice/internal/transport/swagger"
	"github.com/vitalis-clinic/backoffice/internal/user"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth    *auth.Handler
	Menu    *menu.Handler
	Confirm *confirm.Handler
	Users   *user.Handler
	Intake  *content.IntakeHandler

	Questions *content.Handler[*content.Question]
	Feedback  *content.Handler[*content.Feedback]
	Letters   *content.Handler[*content.Letter]
	Services  *content.Handler[*content.ClinicService]
	Partners  *content.Handler[*content.Partner]
	Vacancies *content.Handler[*content.Vacancy]
	Contacts  *content.Handler[*content.Contact]
}

// RegisterAllRoutes wires the whole HTTP surface: public site endpoints,
// the admin back office behind the session gate, health checks and
// metrics.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, cache *redis.Client, h Handlers, cfg RouterConfig, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, cache)

	router.Use(middleware.CORSWithOrigins(cfg.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	if cfg.Metrics != nil {
		router.Use(metrics.Middleware(cfg.Metrics))
	}

	if cfg.MetricsRegistry != nil {
		router.Handle("/metrics", metrics.Handler(cfg.MetricsRegistry))
	}

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Public site endpoints, read-only except the feedback form.
		r.Get("/questions", h.Questions.List)
		r.Get("/services", h.Services.List)
		r.Get("/partners", h.Partners.List)
		r.Get("/vacancies", h.Vacancies.List)
		r.Get("/contacts", h.Contacts.List)
		r.Get("/letters", h.Letters.List)
		r.Post("/feedback", h.Intake.Submit)

		r.Route("/admin", func(ar chi.Router) {
			ar.Use(h.Auth.RoleContextMiddleware)

			// These stay outside the session gate: they establish or
			// probe the session instead of requiring one.
			ar.Post("/verify", h.Auth.Verify)
			ar.Get("/check", h.Auth.Check)
			ar.Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.Post("/logout", h.Auth.Logout)

			ar.Group(func(pr chi.Router) {
				pr.Use(h.Auth.SessionMiddleware)

				pr.Post("/keepalive", h.Auth.Keepalive)
				pr.Get("/menu", h.Menu.GetMenu)

				pr.Route("/confirmations", func(cr chi.Router) {
					cr.Post("/", h.Confirm.RequestConfirmation)
					cr.Post("/{token}", h.Confirm.ResolveConfirmation)
				})

				pr.Route("/questions", h.Questions.Routes)
				pr.Route("/feedback", h.Feedback.Routes)
				pr.Route("/letters", h.Letters.Routes)
				pr.Route("/services", h.Services.Routes)
				pr.Route("/partners", h.Partners.Routes)
				pr.Route("/vacancies", h.Vacancies.Routes)
				pr.Route("/contacts", h.Contacts.Routes)

				pr.Group(func(ur chi.Router) {
					ur.Use(menu.RequireVisibility(menu.VisibilityChiefDoctorOnly, logger))
					ur.Route("/users", h.Users.Routes)
				})
			})
		})
	})
}

// RouterConfig carries the cross-cutting wiring of the HTTP surface.
type RouterConfig struct {
	AllowedOrigins  string
	Metrics         metrics.Recorder
	MetricsRegistry *prometheus.Registry
}
