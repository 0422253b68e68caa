package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/farmtrade/internal/http/negotiation"
)

type Options struct {
	AllowedOrigins []string
	// Authenticate resolves the caller and rejects anonymous requests.
	Authenticate func(http.Handler) http.Handler
}

func New(opts Options, negotiationsV1 *negotiation.Handler) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/negotiations", func(r chi.Router) {
			r.Use(opts.Authenticate)
			r.Use(middleware.AllowContentType("application/json"))
			negotiationsV1.Routes(r)
		})
	})

	return router
}
