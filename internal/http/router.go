package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/thepoolshop/shopkeep/internal/auth"
	"github.com/thepoolshop/shopkeep/internal/http/customer"
	"github.com/thepoolshop/shopkeep/internal/http/importcsv"
	"github.com/thepoolshop/shopkeep/internal/http/invoice"
	"github.com/thepoolshop/shopkeep/internal/http/product"
	"github.com/thepoolshop/shopkeep/internal/http/report"
	"github.com/thepoolshop/shopkeep/internal/http/session"
)

func New(
	authSvc *auth.Service,
	allowedOrigins []string,
	sessionV1 *session.Handler,
	productsV1 *product.Handler,
	customersV1 *customer.Handler,
	invoicesV1 *invoice.Handler,
	reportsV1 *report.Handler,
	importV1 *importcsv.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			sessionV1.Routes(r)
		})

		// Everything below requires a valid admin token.
		r.Group(func(r chi.Router) {
			r.Use(authSvc.Middleware)

			r.Route("/products", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				productsV1.Routes(r)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				customersV1.Routes(r)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				invoicesV1.Routes(r)
			})

			r.Route("/reports", reportsV1.Routes)

			r.Route("/import", importV1.Routes)
		})
	})

	return router
}
