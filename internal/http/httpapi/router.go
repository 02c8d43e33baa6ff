package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/clintonluvs29/anime-fiesta/internal/http/handlers"
	"github.com/clintonluvs29/anime-fiesta/internal/infra"
	"github.com/clintonluvs29/anime-fiesta/internal/middleware"
)

// NewRouter wires the API surface. The generate route carries the per-client
// rate limit; everything else is read traffic or cheap control calls.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.Health)
		r.With(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)).Post("/generate", app.Generate)
		r.Get("/progress/{projectId}", app.Progress)
		r.Get("/status/{projectId}", app.Status)
		r.Get("/cancel/{projectId}", app.Cancel)
		r.Get("/result/{projectId}/{jobId}", app.Result)
	})

	return r
}
