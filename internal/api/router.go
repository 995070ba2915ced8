package api

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/folio/internal/api/middleware"
	"github.com/eldtechnologies/folio/internal/auth"
	"github.com/eldtechnologies/folio/internal/handlers"
)

// maxUploadBody bounds request bodies; work images may be up to 8 MiB.
const maxUploadBody = 10 << 20

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, sessions *auth.Sessions, loginPath string) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(maxUploadBody))
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Binds the admin identity, if any, to the request context
	r.Use(sessions.Load)

	gate := auth.NewGate("/")

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir()))))
	r.Get("/health", h.Health)

	// Public pages
	r.Get("/", h.Home)
	r.Get("/about", h.About)
	r.Get("/services", h.Services)
	r.Get("/works", h.Works)
	r.Get("/work_single", h.WorkSingle)
	r.Get("/works/{id}/image", h.WorkImage)
	r.Get("/resume", h.Resume)
	r.Get("/contact", h.Contact)
	r.Post("/contact", h.Contact)

	// JSON API, readable from other origins
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		r.Get("/works", h.ListWorksJSON)
	})

	// Visitors only
	r.Group(func(r chi.Router) {
		r.Use(gate.RequireAnonymous)

		r.Get(loginPath, h.Login)
		r.Post(loginPath, h.Login)
	})

	// Admin only
	r.Group(func(r chi.Router) {
		r.Use(gate.RequireAuthenticated)

		r.Get("/new_work", h.NewWork)
		r.Post("/new_work", h.NewWork)
		r.Get("/edit_work", h.EditWork)
		r.Post("/edit_work", h.EditWork)
		r.Get("/delete_work", h.DeleteWork)
		r.Post("/delete_work", h.DeleteWork)
		r.Post("/logout", h.Logout)
	})

	r.NotFound(h.NotFound)

	return r
}

// staticDir returns the path to static files directory.
func staticDir() string {
	// Check if running from app directory (production container)
	if _, err := os.Stat("/app/web/static"); err == nil {
		return "/app/web/static"
	}
	return "web/static"
}
