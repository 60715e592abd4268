package calls

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/stratastock/internal/app/features/errors"
	calllogstore "github.com/dalemusser/stratastock/internal/app/store/calllog"
	"github.com/dalemusser/stratastock/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func setup(t *testing.T) (http.Handler, *calllogstore.Store) {
	t.Helper()
	testutil.MustBootTemplates(t)
	db := testutil.SetupTestDB(t)

	logger := zap.NewNop()
	store := calllogstore.New(db)
	r := chi.NewRouter()
	r.Mount("/calls", Routes(NewHandler(store, errorsfeature.NewErrorLogger(logger), logger)))
	return r, store
}

func seed(t *testing.T, store *calllogstore.Store) []primitive.ObjectID {
	t.Helper()
	now := time.Now().UTC()
	entries := []calllogstore.Entry{
		{RequestID: "req-list", Method: "GET", Path: "/inventory/", StatusCode: 200, DurationMs: 12, StartedAt: now.Add(-time.Minute)},
		{RequestID: "req-monthly", Method: "POST", Path: "/forecast/monthly", StatusCode: 500, ErrorKind: "http", DurationMs: 80, StartedAt: now.Add(-30 * time.Second),
			RequestBodyPreview: `{"store":"Kolkata","year":2025,"month":3}`},
		{RequestID: "req-delete", Method: "DELETE", Path: "/inventory/3", ErrorKind: "network", ErrorMessage: "connection refused", StartedAt: now},
	}
	ids := make([]primitive.ObjectID, len(entries))
	for i, e := range entries {
		e.ID = primitive.NewObjectID()
		e.CompletedAt = e.StartedAt
		if err := store.Create(context.Background(), e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		ids[i] = e.ID
	}
	return ids
}

func get(target string) *http.Request {
	return testutil.WithCSRFToken(testutil.NewRequest(http.MethodGet, target))
}

func TestServeList(t *testing.T) {
	router, store := setup(t)
	seed(t, store)

	rec := testutil.Serve(router, get("/calls"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "/forecast/monthly")
	rec.AssertContains(t, "/inventory/3")
}

func TestServeList_Filters(t *testing.T) {
	router, store := setup(t)
	seed(t, store)

	rec := testutil.Serve(router, get("/calls?method=post"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "/forecast/monthly")
	if strings.Contains(rec.Body.String(), "/inventory/3") {
		t.Error("method filter should exclude the DELETE call")
	}

	rec = testutil.Serve(router, get("/calls?failed=true&path=/inventory/"))
	rec.AssertContains(t, "/inventory/3")
	if strings.Contains(rec.Body.String(), "/forecast/monthly") {
		t.Error("path filter should exclude forecast calls")
	}
}

func TestServeDetail(t *testing.T) {
	router, store := setup(t)
	ids := seed(t, store)

	rec := testutil.Serve(router, get("/calls/"+ids[1].Hex()))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "req-monthly")
	rec.AssertContains(t, "&#34;store&#34;:&#34;Kolkata&#34;")
}

func TestServeDetail_NotFound(t *testing.T) {
	router, _ := setup(t)

	for _, id := range []string{"not-an-id", primitive.NewObjectID().Hex()} {
		rec := testutil.Serve(router, get("/calls/"+id))
		rec.AssertStatus(t, http.StatusNotFound)
	}
}

func TestServeStats(t *testing.T) {
	router, store := setup(t)
	seed(t, store)

	rec := testutil.Serve(router, get("/calls/stats"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Average duration")
}

func TestBreakdown(t *testing.T) {
	got := breakdown(map[string]int64{"2xx": 6, "5xx": 2, "failed": 2})
	want := []StatusBreakdownVM{
		{Status: "2xx", Count: 6, Percentage: 60},
		{Status: "3xx"},
		{Status: "4xx"},
		{Status: "5xx", Count: 2, Percentage: 20},
		{Status: "failed", Count: 2, Percentage: 20},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("breakdown mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{0: "status-failed", 200: "status-2xx", 302: "status-3xx", 404: "status-4xx", 502: "status-5xx"}
	for code, want := range tests {
		if got := statusClass(code); got != want {
			t.Errorf("statusClass(%d) = %q, want %q", code, got, want)
		}
	}
}
