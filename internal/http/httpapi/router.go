package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/faelscarpato/capyvision/internal/http/handlers"
	"github.com/faelscarpato/capyvision/internal/middleware"
)

// Options carries the router's cross-cutting configuration.
type Options struct {
	Logger        zerolog.Logger
	DefaultLocale string
	CountryLookup middleware.CountryLookup
	RatePerMinute int
	StaticDir     string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)
	if opts.RatePerMinute > 0 {
		r.Use(middleware.RateLimit(opts.RatePerMinute, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Post("/v1/generate", app.Generate)

	r.Route("/v1/gallery", func(r chi.Router) {
		r.Get("/", app.GalleryList)
		r.Delete("/", app.GalleryClear)
	})

	r.Route("/v1/credentials", func(r chi.Router) {
		r.Get("/status", app.CredentialStatus)
		r.Post("/", app.CredentialConnect)
		r.Delete("/", app.CredentialDisconnect)
	})

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
