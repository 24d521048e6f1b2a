package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rahulk736694/typeface-finance-app/internal/auth"
	"github.com/rahulk736694/typeface-finance-app/internal/http/categorize"
	"github.com/rahulk736694/typeface-finance-app/internal/http/importcsv"
	"github.com/rahulk736694/typeface-finance-app/internal/http/ledger"
	"github.com/rahulk736694/typeface-finance-app/internal/http/recurring"
)

func New(
	authManager *auth.Manager,
	entriesV1 *ledger.Handler,
	recurringV1 *recurring.Handler,
	importV1 *importcsv.Handler,
	categorizeV1 *categorize.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authManager.Middleware)

		r.Route("/entries", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			entriesV1.Routes(r)
		})

		r.Route("/recurring", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			recurringV1.Routes(r)
		})

		r.Route("/import", importV1.Routes)

		r.Route("/categorize", func(r chi.Router) {
			categorizeV1.Routes(r)
		})
	})

	return router
}
