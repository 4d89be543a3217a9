package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"prolink-server/internal/http/handlers"
	"prolink-server/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.CORSAllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	r.Post("/v1/auth/google", app.AuthGoogle)

	r.Route("/v1/wizard", func(r chi.Router) {
		r.Use(middleware.OptionalAuthJWT(app.Config.JWTSecret))

		r.Get("/catalog", app.Catalog)
		r.Post("/upload", app.Upload)
		r.Post("/vibe", app.SetVibe)
		r.Post("/feature", app.SetField)
		r.Post("/background/custom", app.SetCustomBackground)
		r.Post("/reset", app.Reset)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
			r.Post("/generate", app.Generate)
		})

		r.Get("/variants", app.Variants)
		r.Get("/variants/zip", app.VariantsZip)

		r.Route("/editor", func(r chi.Router) {
			r.Post("/open", app.OpenEditor)
			r.Get("/history", app.History)
			r.Post("/select", app.SelectVersion)
			r.Post("/edit", app.ApplyEdit)
			r.Get("/download", app.Download)
		})
	})

	r.Route("/v1/projects", func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Config.JWTSecret))
		r.Get("/", app.ListProjects)
		r.Delete("/{projectID}", app.DeleteProject)
	})

	return r
}
