// Package view serves the store as a small local JSON API. Each route is a
// view intent dispatched into the store; responses are the resulting state.
package view

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/store"
)

const maxRequestBodySize = 1 << 20

type Handler struct {
	store   *store.Store
	timeout time.Duration
	logger  *zap.Logger
}

func NewHandler(st *store.Store, timeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{store: st, timeout: timeout, logger: logger}
}

// Router wires the intents under chi with the usual middleware stack.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(maxRequestBodySize))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/state", h.GetState)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Patch("/items/{id}", h.UpdateItem)
		r.Post("/coupon", h.ApplyCoupon)
		r.Delete("/coupon", h.RemoveCoupon)
	})

	r.Get("/products", h.ListProducts)
	r.Post("/products/refresh", h.RefreshProducts)
	r.Get("/categories", h.ListCategories)

	r.Route("/dashboard", func(r chi.Router) {
		r.Post("/refresh", h.RefreshDashboard)
		r.Post("/alerts/{id}/resolve", h.ResolveAlert)
	})

	r.Route("/ui", func(r chi.Router) {
		r.Post("/dark-mode", h.SetDarkMode)
		r.Post("/snackbar", h.ShowSnackbar)
		r.Delete("/snackbar", h.HideSnackbar)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	return otelhttp.NewHandler(r, "storefront-view")
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("dur", time.Since(start)))
	})
}
