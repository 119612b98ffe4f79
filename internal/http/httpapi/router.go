// Package httpapi wires handlers and middleware into the chi router.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"fitserver/internal/http/handlers"
	"fitserver/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
		middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/jobs", func(r chi.Router) {
		r.Post("/", app.SubmitJob)
		r.Get("/{id}", app.GetJob)
		r.Delete("/{id}", app.WithdrawJob)
	})

	r.Route("/v1/prompts", func(r chi.Router) {
		r.Post("/", app.CreatePrompt)
		r.Get("/{name}", app.GetPrompt)
		r.Get("/{name}/{version}", app.GetPromptVersion)
	})

	return r
}
