// Package server assembles the HTTP router of billed.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pigeonworks-llc/billed/internal/api"
	"github.com/pigeonworks-llc/billed/internal/routes"
	"github.com/pigeonworks-llc/billed/internal/store"
	"github.com/pigeonworks-llc/billed/internal/web"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	Store *store.Store
	Pages *web.Handler
	// APIClients enables bearer-token authentication on the bill API when
	// non-empty.
	APIClients     map[string]string
	RequestTimeout time.Duration // Default: 60 seconds
}

// NewRouter builds the router serving the pages, the bill API and the
// health check.
func NewRouter(d Deps) http.Handler {
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	// Pages.
	d.Pages.Routes(r)

	// Bill API.
	tokens := api.NewTokenHandler(d.Store, d.APIClients)
	r.Post("/oauth/token", tokens.HandleToken)

	billsAPI := api.NewBillsHandler(d.Store)
	r.Route(routes.API, func(r chi.Router) {
		if len(d.APIClients) > 0 {
			r.Use(api.AuthMiddleware(d.Store))
		} else {
			slog.Warn("bill API served without authentication")
		}
		billsAPI.Routes(r)
	})

	r.Get(routes.Health, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
