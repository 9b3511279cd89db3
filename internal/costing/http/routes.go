package http

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the costing endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/costing/alerts", h.Alerts)
	r.Get("/costing/{productID}", h.Breakdown)
	r.Post("/costing/{productID}/refresh", h.Refresh)
}
