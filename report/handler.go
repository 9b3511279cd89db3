package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/comal-erp/comal-erp/internal/costing"
	costinghttp "github.com/comal-erp/comal-erp/internal/costing/http"
	"github.com/comal-erp/comal-erp/internal/platform/httpx"
)

// Coster supplies the costed product view a sheet is rendered from.
type Coster interface {
	ProductCost(ctx context.Context, productID int64) (*costing.ProductCost, error)
}

// Handler manages report endpoints.
type Handler struct {
	client *Client
	coster Coster
	logger *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, coster Coster, logger *slog.Logger) *Handler {
	return &Handler{client: client, coster: coster, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/technical-sheet/{productID}", h.technicalSheet)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) technicalSheet(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}

	cost, err := h.coster.ProductCost(r.Context(), productID)
	if err != nil {
		costinghttp.RespondEngineError(w, err)
		return
	}

	html, err := TechnicalSheetHTML(cost, time.Now())
	if err != nil {
		h.logger.Error("build technical sheet", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	pdf, err := h.client.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("render technical sheet", slog.Any("error", err), slog.Int64("product_id", productID))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=technical-sheet-%s.pdf", cost.Code))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
