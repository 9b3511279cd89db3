package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/comal-erp/comal-erp/internal/costing"
	"github.com/comal-erp/comal-erp/internal/observability"
	"github.com/comal-erp/comal-erp/jobs"
)

type stubSource struct {
	snap *costing.Snapshot
}

func (s *stubSource) LoadSnapshot(ctx context.Context) (*costing.Snapshot, error) {
	return s.snap, nil
}

func (s *stubSource) ListUnits(ctx context.Context) ([]costing.Unit, error) {
	return nil, nil
}

func floatPtr(v float64) *float64 { return &v }

func testSnapshot() *costing.Snapshot {
	return &costing.Snapshot{
		Products: map[int64]costing.Product{
			1: {ID: 1, Code: "RM-001", Name: "Fish", CategoryName: "Proteins", Kind: costing.KindRawMaterial,
				Profile: &costing.CostProfile{PurchasePrice: 100, Conversion: 1, InitialWeight: 10, FinalWeight: 8}},
			4: {ID: 4, Code: "DSH-001", Name: "Plate", Kind: costing.KindDish, Price: 50, TaxRate: 16,
				IdealCostPercent: floatPtr(30)},
		},
		Components: map[int64][]costing.Component{
			4: {{ParentID: 4, ChildID: 1, Quantity: 0.5}},
		},
	}
}

type fakeWarmups struct {
	calls int
}

func (f *fakeWarmups) EnqueueWarmup(context.Context, jobs.WarmupPayload) (*asynq.TaskInfo, error) {
	f.calls++
	return &asynq.TaskInfo{ID: "task-1"}, nil
}

func newTestRouter(snap *costing.Snapshot) http.Handler {
	return newTestRouterWithWarmups(snap, nil)
}

func newTestRouterWithWarmups(snap *costing.Snapshot, warmups WarmupEnqueuer) http.Handler {
	logger := slog.New(slog.DiscardHandler)
	service := costing.NewService(&stubSource{snap: snap}, costing.NewCache(nil, 0), logger)
	handler := NewHandler(logger, service, observability.NewMetrics(), warmups)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func TestBreakdownEndpoint(t *testing.T) {
	router := newTestRouter(testSnapshot())

	req := httptest.NewRequest(http.MethodGet, "/costing/4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Code      string `json:"code"`
		Breakdown struct {
			TotalCost float64 `json:"total_cost"`
		} `json:"breakdown"`
		Alert struct {
			PriceExTax  float64 `json:"price_ex_tax"`
			CostPercent float64 `json:"cost_percent"`
			Alert       bool    `json:"alert"`
		} `json:"alert"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "DSH-001", body.Code)
	require.Equal(t, 40.0, body.Breakdown.TotalCost)
	require.Equal(t, 42.0, body.Alert.PriceExTax)
	require.Equal(t, 95.24, body.Alert.CostPercent)
	require.True(t, body.Alert.Alert)
}

func TestBreakdownInvalidID(t *testing.T) {
	router := newTestRouter(testSnapshot())

	req := httptest.NewRequest(http.MethodGet, "/costing/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBreakdownUnknownProductIs404(t *testing.T) {
	router := newTestRouter(testSnapshot())

	req := httptest.NewRequest(http.MethodGet, "/costing/999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBreakdownCyclicRecipeIs422(t *testing.T) {
	snap := testSnapshot()
	snap.Products[3] = costing.Product{ID: 3, Code: "SR-001", Name: "Base", Kind: costing.KindSubRecipe}
	snap.Components[3] = []costing.Component{{ParentID: 3, ChildID: 4, Quantity: 1}}
	snap.Components[4] = []costing.Component{{ParentID: 4, ChildID: 3, Quantity: 1}}
	router := newTestRouter(snap)

	req := httptest.NewRequest(http.MethodGet, "/costing/4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBreakdownDanglingChildIs422(t *testing.T) {
	snap := testSnapshot()
	snap.Components[4] = append(snap.Components[4], costing.Component{ParentID: 4, ChildID: 99, Quantity: 1})
	router := newTestRouter(snap)

	req := httptest.NewRequest(http.MethodGet, "/costing/4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	router := newTestRouter(testSnapshot())

	req := httptest.NewRequest(http.MethodPost, "/costing/4/refresh", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshEnqueuesCatalogWarmup(t *testing.T) {
	warmups := &fakeWarmups{}
	router := newTestRouterWithWarmups(testSnapshot(), warmups)

	req := httptest.NewRequest(http.MethodPost, "/costing/4/refresh", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, warmups.calls)

	// Plain reads never touch the queue.
	req = httptest.NewRequest(http.MethodGet, "/costing/4", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, warmups.calls)
}

func TestAlertsEndpoint(t *testing.T) {
	router := newTestRouter(testSnapshot())

	req := httptest.NewRequest(http.MethodGet, "/costing/alerts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Alerts []struct {
			Code        string  `json:"code"`
			CostPercent float64 `json:"cost_percent"`
			Alert       bool    `json:"alert"`
		} `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Alerts, 1)
	require.Equal(t, "DSH-001", body.Alerts[0].Code)
	require.Equal(t, 95.24, body.Alerts[0].CostPercent)
	require.True(t, body.Alerts[0].Alert)
}
