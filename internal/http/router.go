package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authsvc "github.com/yhhuang/moneybook/internal/auth"
	authHandler "github.com/yhhuang/moneybook/internal/http/auth"
	ledgerHandler "github.com/yhhuang/moneybook/internal/http/ledger"
	recurringHandler "github.com/yhhuang/moneybook/internal/http/recurring"
	settingsHandler "github.com/yhhuang/moneybook/internal/http/settings"
)

func New(
	session *authsvc.Service,
	authV1 *authHandler.Handler,
	ledgerV1 *ledgerHandler.Handler,
	recurringV1 *recurringHandler.Handler,
	settingsV1 *settingsHandler.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", authV1.Routes)

		r.Group(func(r chi.Router) {
			r.Use(session.Middleware)
			r.Use(middleware.AllowContentType("application/json"))

			r.Route("/ledger", ledgerV1.Routes)
			r.Route("/recurring", recurringV1.Routes)
			r.Route("/settings", settingsV1.Routes)
		})
	})

	return router
}
