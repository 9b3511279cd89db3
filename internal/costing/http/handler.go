// Package http exposes the costing engine over JSON endpoints.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/singleflight"

	"github.com/comal-erp/comal-erp/internal/costing"
	"github.com/comal-erp/comal-erp/internal/observability"
	"github.com/comal-erp/comal-erp/internal/platform/httpx"
	"github.com/comal-erp/comal-erp/jobs"
)

// WarmupEnqueuer pushes a catalog warmup onto the background queue.
type WarmupEnqueuer interface {
	EnqueueWarmup(ctx context.Context, payload jobs.WarmupPayload) (*asynq.TaskInfo, error)
}

// Handler serves cost breakdowns, alerts and conversion suggestions.
type Handler struct {
	logger  *slog.Logger
	service *costing.Service
	metrics *observability.Metrics
	warmups WarmupEnqueuer
	group   singleflight.Group
}

// NewHandler builds the costing handler. warmups may be nil; refreshes then
// skip the background rewarm.
func NewHandler(logger *slog.Logger, service *costing.Service, metrics *observability.Metrics, warmups WarmupEnqueuer) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics, warmups: warmups}
}

// Breakdown returns the exploded cost of one product. Concurrent requests
// for the same product collapse behind a single computation.
func (h *Handler) Breakdown(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}

	key := "product:" + strconv.FormatInt(productID, 10)
	value, err, shared := h.singleflightCost(r.Context(), key, productID)
	if err != nil {
		h.observeFailure(err)
		h.logger.Error("cost breakdown failed", slog.Int64("product_id", productID), slog.Any("error", err))
		RespondEngineError(w, err)
		return
	}
	if shared {
		h.metrics.ObserveExplosion("hit")
	} else {
		h.metrics.ObserveExplosion("computed")
	}
	httpx.JSON(w, http.StatusOK, roundedCost(value.(*costing.ProductCost)))
}

// Refresh bumps the cost cache and recomputes the product.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	if err := h.service.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache bump failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.ProductCost(r.Context(), productID)
	if err != nil {
		h.observeFailure(err)
		RespondEngineError(w, err)
		return
	}
	h.metrics.ObserveExplosion("computed")

	// The bump left every other cached breakdown cold; the worker refills
	// them without holding this request.
	if h.warmups != nil {
		if _, err := h.warmups.EnqueueWarmup(r.Context(), jobs.WarmupPayload{}); err != nil {
			h.logger.Warn("warmup enqueue failed", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusOK, roundedCost(result))
}

// Alerts lists the cost flags for every dish and sub-recipe.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Alerts(r.Context())
	if err != nil {
		h.logger.Error("alert scan failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	for i := range rows {
		rows[i].TotalCost = costing.Round2(rows[i].TotalCost)
		rows[i].CostPercent = costing.Round2(rows[i].CostPercent)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"alerts": rows})
}

func (h *Handler) singleflightCost(ctx context.Context, key string, productID int64) (interface{}, error, bool) {
	resultChan := h.group.DoChan(key, func() (interface{}, error) {
		return h.service.ProductCost(ctx, productID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}

// RespondEngineError maps engine failures onto problem responses. A missing
// root product is a 404; a structural failure inside the tree (cycle,
// dangling edge, bad quantity) is client-addressable data and surfaces as
// 422 with the typed message instead of a blank 500.
func RespondEngineError(w http.ResponseWriter, err error) {
	var (
		cyclic   *costing.CyclicRecipeError
		dangling *costing.DanglingReferenceError
		quantity *costing.InvalidQuantityError
	)
	switch {
	case errors.As(err, &dangling) && dangling.ParentID == 0:
		httpx.Problem(w, http.StatusNotFound, "Not Found", dangling.Error())
	case errors.As(err, &dangling):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Dangling Reference", dangling.Error())
	case errors.As(err, &cyclic):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Cyclic Recipe", cyclic.Error())
	case errors.As(err, &quantity):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Quantity", quantity.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func (h *Handler) observeFailure(err error) {
	var (
		cyclic   *costing.CyclicRecipeError
		dangling *costing.DanglingReferenceError
		quantity *costing.InvalidQuantityError
	)
	switch {
	case errors.As(err, &cyclic):
		h.metrics.ObserveExplosionFailure("cycle")
	case errors.As(err, &dangling):
		h.metrics.ObserveExplosionFailure("dangling")
	case errors.As(err, &quantity):
		h.metrics.ObserveExplosionFailure("quantity")
	default:
		h.metrics.ObserveExplosionFailure("other")
	}
	h.metrics.ObserveExplosion("failed")
}

// roundedCost applies the 2-decimal presentation rounding to a copy of the
// computed cost. Internal sums stay unrounded in the cache.
func roundedCost(cost *costing.ProductCost) *costing.ProductCost {
	if cost == nil || cost.Breakdown == nil {
		return cost
	}
	out := *cost
	breakdown := *cost.Breakdown
	breakdown.TotalCost = costing.Round2(breakdown.TotalCost)
	breakdown.UnitCost = costing.Round2(breakdown.UnitCost)

	breakdown.Lines = append([]costing.Line(nil), breakdown.Lines...)
	for i := range breakdown.Lines {
		breakdown.Lines[i].UnitCost = costing.Round2(breakdown.Lines[i].UnitCost)
		breakdown.Lines[i].Total = costing.Round2(breakdown.Lines[i].Total)
	}
	breakdown.Groups = append([]costing.CategoryGroup(nil), breakdown.Groups...)
	for i := range breakdown.Groups {
		group := breakdown.Groups[i]
		group.Subtotal = costing.Round2(group.Subtotal)
		group.Lines = append([]costing.Line(nil), group.Lines...)
		for j := range group.Lines {
			group.Lines[j].UnitCost = costing.Round2(group.Lines[j].UnitCost)
			group.Lines[j].Total = costing.Round2(group.Lines[j].Total)
		}
		breakdown.Groups[i] = group
	}
	out.Breakdown = &breakdown

	if cost.Alert != nil {
		alert := *cost.Alert
		alert.PriceExTax = costing.Round2(alert.PriceExTax)
		alert.CostPercent = costing.Round2(alert.CostPercent)
		out.Alert = &alert
	}
	if cost.Yield != nil {
		fig := *cost.Yield
		fig.YieldPercent = costing.Round2(fig.YieldPercent)
		fig.WastePercent = costing.Round2(fig.WastePercent)
		fig.NetUnitPrice = costing.Round2(fig.NetUnitPrice)
		fig.ProcessedUnitPrice = costing.Round2(fig.ProcessedUnitPrice)
		out.Yield = &fig
	}
	return &out
}
