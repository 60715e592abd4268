package inventory

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	errorsfeature "github.com/dalemusser/stratastock/internal/app/features/errors"
	"github.com/dalemusser/stratastock/internal/app/system/xlsx"
	"github.com/dalemusser/stratastock/internal/domain/models"
	"github.com/dalemusser/stratastock/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func sampleItems(n int) []models.Item {
	items := make([]models.Item, n)
	for i := range items {
		items[i] = models.Item{
			ID:                i + 1,
			WalmartItemID:     fmt.Sprintf("W-%03d", i+1),
			Name:              fmt.Sprintf("Item %02d", i+1),
			Category:          "Grocery",
			Quantity:          1,
			Unit:              "pieces",
			Price:             9.5,
			CurrentStock:      50,
			MinStockThreshold: 10,
			MaxStockThreshold: 100,
		}
	}
	return items
}

func newTestRouter(t *testing.T, fb *testutil.FakeBackend) http.Handler {
	t.Helper()
	testutil.MustBootTemplates(t)

	logger := zap.NewNop()
	h := NewHandler(fb.Client(t), errorsfeature.NewErrorLogger(logger), logger, 10)

	r := chi.NewRouter()
	r.Mount("/inventory", Routes(h))
	return testutil.WithToasts(t, r)
}

func get(target string) *http.Request {
	return testutil.WithCSRFToken(testutil.NewRequest(http.MethodGet, target))
}

func validForm() url.Values {
	return url.Values{
		"walmart_item_id": {"W-100"},
		"name":            {"Basmati rice"},
		"category":        {"Grocery"},
		"quantity":        {"5"},
		"price":           {"12.50"},
		"current_stock":   {"40"},
	}
}

func TestServeList_Paginates(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.On(http.MethodGet, "/inventory/", http.StatusOK, sampleItems(25))
	router := newTestRouter(t, fb)

	rec := testutil.Serve(router, get("/inventory?page=3"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Page 3 of 3")
	rec.AssertContains(t, "Item 21")
	rec.AssertContains(t, "Item 25")
	if strings.Contains(rec.Body.String(), "Item 20<") {
		t.Error("page 3 should not include item 20")
	}
}

func TestServeList_ClampsPage(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.On(http.MethodGet, "/inventory/", http.StatusOK, sampleItems(25))
	router := newTestRouter(t, fb)

	rec := testutil.Serve(router, get("/inventory?page=99"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Page 3 of 3")
}

func TestServeList_LowStockFilter(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.On(http.MethodGet, "/inventory/", http.StatusOK, []models.Item{})
	router := newTestRouter(t, fb)

	rec := testutil.Serve(router, get("/inventory?low_stock=true"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "No items are low on stock.")
	if got := fb.LastCall().Query; got != "low_stock=true" {
		t.Errorf("backend query = %q, want low_stock=true", got)
	}
}

func TestServeList_BackendFailure(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.On(http.MethodGet, "/inventory/", http.StatusInternalServerError, map[string]string{"detail": "database is locked"})
	router := newTestRouter(t, fb)

	rec := testutil.Serve(router, get("/inventory"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "alert-error")
	rec.AssertContains(t, "toast-error")
	rec.AssertContains(t, "database is locked")
}

func TestServeList_StockLevelClasses(t *testing.T) {
	items := sampleItems(3)
	items[0].CurrentStock = 0
	items[1].CurrentStock = 5
	items[2].CurrentStock = 500

	fb := testutil.NewFakeBackend(t)
	fb.On(http.MethodGet, "/inventory/", http.StatusOK, items)
	router := newTestRouter(t, fb)

	rec := testutil.Serve(router, get("/inventory"))

	for _, class := range []string{"level-out", "level-low", "level-over"} {
		rec.AssertContains(t, class)
	}
}

func TestServeDetail(t *testing.T) {
	item := sampleItems(1)[0]
	item.ID = 5
	item.Description = "Long grain <script>alert(1)</script><b>aged</b>"

	fb := testutil.NewFakeBackend(t)
	fb.On(http.MethodGet, "/inventory/5", http.StatusOK, item)
	router := newTestRouter(t, fb)

	rec := testutil.Serve(router, get("/inventory/5"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, item.Name)
	rec.AssertContains(t, "<b>aged</b>")
	rec.AssertContains(t, "9.50")
	if strings.Contains(rec.Body.String(), "<script>alert(1)") {
		t.Error("description was not sanitized")
	}
}

func TestServeDetail_NotFound(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	router := newTestRouter(t, fb)

	rec := testutil.Serve(router, get("/inventory/404"))

	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "Item not found")
}

func TestServeDetail_InvalidID(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	router := newTestRouter(t, fb)

	for _, id := range []string{"abc", "0", "-3"} {
		rec := testutil.Serve(router, get("/inventory/"+id))
		rec.AssertStatus(t, http.StatusNotFound)
	}
	if n := len(fb.Calls()); n != 0 {
		t.Errorf("backend calls = %d, want 0", n)
	}
}

func TestServeDetail_BackendDown(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.On(http.MethodGet, "/inventory/5", http.StatusServiceUnavailable, nil)
	router := newTestRouter(t, fb)

	rec := testutil.Serve(router, get("/inventory/5"))

	rec.AssertStatus(t, http.StatusBadGateway)
	rec.AssertContains(t, "alert-error")
}

func TestHandleCreate_ValidationBlocksBackend(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	router := newTestRouter(t, fb)

	form := validForm()
	form.Del("name")
	form.Set("price", "0")

	rec := testutil.Serve(router, testutil.NewFormRequest("/inventory/new", form))

	rec.AssertStatus(t, http.StatusUnprocessableEntity)
	rec.AssertContains(t, "Name is required.")
	rec.AssertContains(t, "field-error")
	rec.AssertContains(t, `value="W-100"`)
	if n := len(fb.Calls()); n != 0 {
		t.Errorf("backend calls = %d, want 0", n)
	}
}

func TestHandleCreate_Success(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	created := sampleItems(1)[0]
	created.ID = 42
	fb.On(http.MethodPost, "/inventory/", http.StatusOK, created)
	router := newTestRouter(t, fb)

	form := validForm()
	form.Set("name", "<i>Basmati</i> rice")

	rec := testutil.Serve(router, testutil.NewFormRequest("/inventory/new", form))

	rec.AssertRedirect(t, "/inventory/42")
	if rec.Header().Get("Set-Cookie") == "" {
		t.Error("expected flash cookie carrying the success toast")
	}

	var sent map[string]any
	if err := json.Unmarshal(fb.LastCall().Body, &sent); err != nil {
		t.Fatalf("decode sent body: %v", err)
	}
	want := map[string]any{
		"walmart_item_id":     "W-100",
		"name":                "Basmati rice",
		"brand":               "",
		"category":            "Grocery",
		"description":         "",
		"quantity":            float64(5),
		"unit":                "pieces",
		"price":               12.5,
		"current_stock":       float64(40),
		"min_stock_threshold": float64(10),
		"max_stock_threshold": float64(1000),
	}
	if diff := cmp.Diff(want, sent); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleCreate_BackendRejects(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.On(http.MethodPost, "/inventory/", http.StatusBadRequest, map[string]string{"detail": "Item already exists"})
	router := newTestRouter(t, fb)

	rec := testutil.Serve(router, testutil.NewFormRequest("/inventory/new", validForm()))

	rec.AssertStatus(t, http.StatusUnprocessableEntity)
	rec.AssertContains(t, "Item already exists")
}

func TestServeEdit_Prefills(t *testing.T) {
	item := sampleItems(1)[0]
	item.ID = 5
	item.Name = "Mustard oil"

	fb := testutil.NewFakeBackend(t)
	fb.On(http.MethodGet, "/inventory/5", http.StatusOK, item)
	router := newTestRouter(t, fb)

	rec := testutil.Serve(router, get("/inventory/5/edit"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `value="Mustard oil"`)
	rec.AssertContains(t, `action="/inventory/5/edit"`)
}

func TestHandleUpdate_Success(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.On(http.MethodPut, "/inventory/5", http.StatusOK, sampleItems(1)[0])
	router := newTestRouter(t, fb)

	rec := testutil.Serve(router, testutil.NewFormRequest("/inventory/5/edit", validForm()))

	rec.AssertRedirect(t, "/inventory/5")
	if got := fb.LastCall(); got.Method != http.MethodPut || got.Path != "/inventory/5" {
		t.Errorf("backend call = %s %s", got.Method, got.Path)
	}
}

func TestHandleDelete(t *testing.T) {
	tests := []struct {
		name   string
		status int
		ret    string
		want   string
	}{
		{"deleted returns to list page", http.StatusNoContent, "/inventory?page=2", "/inventory?page=2"},
		{"deleted from detail goes to list", http.StatusNoContent, "/inventory/7", "/inventory"},
		{"foreign return ignored", http.StatusNoContent, "https://evil.example/", "/inventory"},
		{"missing item goes to list", http.StatusNotFound, "/inventory/7", "/inventory"},
		{"server error returns", http.StatusInternalServerError, "/inventory?page=2", "/inventory?page=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := testutil.NewFakeBackend(t)
			fb.On(http.MethodDelete, "/inventory/7", tt.status, nil)
			router := newTestRouter(t, fb)

			rec := testutil.Serve(router, testutil.NewFormRequest("/inventory/7/delete", url.Values{"return": {tt.ret}}))

			rec.AssertRedirect(t, tt.want)
			if got := fb.LastCall(); got.Method != http.MethodDelete || got.Path != "/inventory/7" {
				t.Errorf("backend call = %s %s", got.Method, got.Path)
			}
		})
	}
}

func TestServeDeleteConfirm(t *testing.T) {
	item := sampleItems(1)[0]
	item.ID = 7

	fb := testutil.NewFakeBackend(t)
	fb.On(http.MethodGet, "/inventory/7", http.StatusOK, item)
	router := newTestRouter(t, fb)

	rec := testutil.Serve(router, get("/inventory/7/delete"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `action="/inventory/7/delete"`)
}

func TestServeExport(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.On(http.MethodGet, "/inventory/", http.StatusOK, sampleItems(3))
	router := newTestRouter(t, fb)

	rec := testutil.Serve(router, get("/inventory/export.xlsx?low_stock=true"))

	rec.AssertStatus(t, http.StatusOK)
	if got := rec.Header().Get("Content-Type"); got != xlsx.ContentType {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "inventory-low-stock.xlsx") {
		t.Errorf("Content-Disposition = %q", got)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty workbook")
	}
}

func TestServeExport_BackendDown(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.On(http.MethodGet, "/inventory/", http.StatusBadGateway, nil)
	router := newTestRouter(t, fb)

	rec := testutil.Serve(router, get("/inventory/export.xlsx"))

	rec.AssertStatus(t, http.StatusBadGateway)
}
