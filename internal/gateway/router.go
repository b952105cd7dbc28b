// Package gateway exposes the backend gRPC services over HTTP/JSON.
package gateway

import (
	"net/http"
	"net/netip"

	"github.com/dmitrijs2005/storefront/internal/gateway/handlers"
	"github.com/dmitrijs2005/storefront/internal/gateway/httputil"
	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts every route both at the root and under /api. Forwarding
// headers are honoured only from peers inside trustedProxies.
func NewRouter(h *handlers.Handler, limiter *httputil.RateLimiter, corsOrigins []string, trustedProxies []netip.Prefix, l logging.Logger) http.Handler {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.Metrics)
	r.Use(httputil.CORS(corsOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RealIP(trustedProxies))
	r.Use(httputil.RequestLogger(l))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)

	routes := func(r chi.Router) {
		r.Route("/Account", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.With(limiter.Handler).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Post("/refresh-token", h.RefreshToken)
			r.Get("/get-user", h.GetUser)
			r.Delete("/delete-user", h.DeleteUser)
			r.Put("/update-user", h.UpdateUser)
			r.Post("/change-password", h.ChangePassword)
			r.With(limiter.Handler).Post("/request-password-reset", h.RequestPasswordReset)
			r.With(limiter.Handler).Post("/reset-password", h.ResetPassword)
		})

		r.Route("/Products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Get("/{id}", h.GetProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})

		r.Route("/Payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.MakePayment)
		})
	}

	r.Group(routes)
	r.Route("/api", routes)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.Error(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.Error(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	return r
}
