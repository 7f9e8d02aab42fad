package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/pennywise/internal/http/account"
	"github.com/MrJamesThe3rd/pennywise/internal/http/budget"
	"github.com/MrJamesThe3rd/pennywise/internal/http/category"
	"github.com/MrJamesThe3rd/pennywise/internal/http/creditcard"
	"github.com/MrJamesThe3rd/pennywise/internal/http/goal"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/http/transaction"
	"github.com/MrJamesThe3rd/pennywise/internal/logger"
)

type Handlers struct {
	Accounts     *account.Handler
	Transactions *transaction.Handler
	CreditCards  *creditcard.Handler
	Categories   *category.Handler
	Budgets      *budget.Handler
	Goals        *goal.Handler
}

type Options struct {
	AllowedOrigins []string
	// Timeout bounds the handling of each request. Zero disables it.
	Timeout time.Duration
	// Limiter is optional.
	Limiter *RateLimiter
	// Auth guards every route under /api except the health check.
	Auth func(http.Handler) http.Handler
	// Ping reports whether the database is reachable.
	Ping func(context.Context) error
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(RequestLogger)
	router.Use(middleware.Recoverer)

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	if opts.Limiter != nil {
		router.Use(opts.Limiter.Middleware)
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", health(opts.Ping))

		r.Group(func(r chi.Router) {
			if opts.Auth != nil {
				r.Use(opts.Auth)
			}

			// Statement imports are the only multipart uploads.
			r.Use(middleware.AllowContentType("application/json", "multipart/form-data"))

			r.Route("/accounts", h.Accounts.Routes)
			r.Route("/transactions", h.Transactions.Routes)
			r.Route("/credit-cards", h.CreditCards.Routes)
			r.Route("/categories", h.Categories.Routes)
			r.Route("/budgets", h.Budgets.Routes)
			r.Route("/goals", h.Goals.Routes)
		})
	})

	return router
}

func health(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				logger.FromContext(r.Context()).Error("health check failed", "error", err)
				respond.Fail(w, r, http.StatusServiceUnavailable, "database unavailable")

				return
			}
		}

		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
