package home

import (
	"net/http"
	"testing"

	"github.com/dalemusser/stratastock/internal/domain/models"
	"github.com/dalemusser/stratastock/internal/testutil"
	"go.uber.org/zap"
)

func TestIndex_ShowsStats(t *testing.T) {
	testutil.MustBootTemplates(t)
	fb := testutil.NewFakeBackend(t)
	fb.On(http.MethodGet, "/inventory/stats/", http.StatusOK, models.InventoryStats{
		TotalItems: 128, TotalStock: 9021, LowStockItems: 7, OutOfStockItems: 3,
	})
	router := testutil.WithToasts(t, Routes(NewHandler(fb.Client(t), zap.NewNop())))

	rec := testutil.Serve(router, testutil.WithCSRFToken(testutil.NewRequest(http.MethodGet, "/")))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "128")
	rec.AssertContains(t, "9021")
	rec.AssertContains(t, "/inventory?low_stock=true")
}

func TestIndex_StatsFailure(t *testing.T) {
	testutil.MustBootTemplates(t)
	fb := testutil.NewFakeBackend(t)
	fb.On(http.MethodGet, "/inventory/stats/", http.StatusInternalServerError, nil)
	router := testutil.WithToasts(t, Routes(NewHandler(fb.Client(t), zap.NewNop())))

	rec := testutil.Serve(router, testutil.WithCSRFToken(testutil.NewRequest(http.MethodGet, "/")))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "toast-error")
	rec.AssertContains(t, "Request failed (500")
}
