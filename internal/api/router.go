package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Cheertaboi/gift-voucher-service/internal/api/handlers"
	"github.com/Cheertaboi/gift-voucher-service/internal/api/middleware"
)

type Handlers struct {
	Vouchers   *handlers.VoucherHandler
	Exclusions *handlers.ExclusionHandler
	Webhooks   *handlers.WebhookHandler
}

// NewRouter builds the HTTP router for the voucher-service
func NewRouter(h Handlers, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Payment gateway callbacks
	r.Post("/webhooks/stripe", h.Webhooks.Stripe)

	// Front desk
	r.Route("/vouchers", func(r chi.Router) {
		r.Get("/{code}", h.Vouchers.Check)
		r.Post("/{code}/redeem", h.Vouchers.Redeem)
	})

	// Admin endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Post("/vouchers", h.Vouchers.Create)
		r.Post("/vouchers/{id}/resend", h.Vouchers.Resend)

		r.Get("/exclusion-periods", h.Exclusions.List)
		r.Post("/exclusion-periods", h.Exclusions.Create)
		r.Put("/exclusion-periods/{id}", h.Exclusions.Update)
		r.Delete("/exclusion-periods/{id}", h.Exclusions.Delete)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
