package status

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/stratastock/internal/app/system/certcheck"
	"github.com/dalemusser/stratastock/internal/app/system/classify"
	"github.com/dalemusser/stratastock/internal/app/system/tasks"
	"github.com/dalemusser/stratastock/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

const clientSecret = "backend-client-secret-value"

func newTestHandler(t *testing.T, ping tasks.PingFunc) http.Handler {
	t.Helper()
	testutil.MustBootTemplates(t)

	probe := tasks.NewProbe(ping, time.Second, zap.NewNop())
	jobs := func() []tasks.JobStatus {
		return []tasks.JobStatus{{Name: "backend-probe", Interval: 30 * time.Second, Runs: 3, Failures: 1, LastError: "dial tcp: refused"}}
	}
	h := NewHandler(probe, nil, classify.Defaults(), jobs,
		&config.CoreConfig{Env: "test"},
		AppConfig{
			BackendURL:          "https://inventory.example.com",
			BackendClientSecret: clientSecret,
			PageSize:            10,
		},
		zap.NewNop())
	h.checkCert = func(hostOrURL string) certcheck.CertInfo {
		return certcheck.CertInfo{
			Host:      "inventory.example.com",
			IsValid:   true,
			Issuer:    "Test CA",
			ExpiresAt: time.Now().Add(10 * 24 * time.Hour),
			DaysLeft:  10,
		}
	}

	r := chi.NewRouter()
	r.Mount("/status", Routes(h))
	return testutil.WithToasts(t, r)
}

func TestServe_BackendUp(t *testing.T) {
	h := newTestHandler(t, func(context.Context) error { return nil })

	rec := testutil.Serve(h, testutil.WithCSRFToken(testutil.NewRequest(http.MethodGet, "/status")))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "https://inventory.example.com")
	rec.AssertContains(t, "Test CA")
	rec.AssertContains(t, classify.SetDateRange)
	rec.AssertContains(t, "backend-probe")
	rec.AssertContains(t, "dial tcp: refused")
	rec.AssertContains(t, "Disabled. Set mongo_uri")

	if strings.Contains(rec.Body.String(), clientSecret) {
		t.Error("status page shows the backend client secret unmasked")
	}
}

func TestServe_BackendDown(t *testing.T) {
	h := newTestHandler(t, func(context.Context) error { return errors.New("connection refused") })

	rec := testutil.Serve(h, testutil.WithCSRFToken(testutil.NewRequest(http.MethodGet, "/status")))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "connection refused")
}

func TestHandleRenew_NoCertRenewer(t *testing.T) {
	h := newTestHandler(t, func(context.Context) error { return nil })

	rec := testutil.Serve(h, testutil.NewFormRequest("/status/renew", nil))
	rec.AssertRedirect(t, "/status")
}

func TestRuleSets_SortedByName(t *testing.T) {
	got := ruleSets(classify.Defaults())
	var names []string
	for _, rs := range got {
		names = append(names, rs.Name)
	}
	want := []string{classify.SetDateRange, classify.SetMonthly, classify.SetSingleDay, classify.SetAllStores}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("rule set order mismatch (-want +got):\n%s", diff)
	}
	if got[1].Default != classify.Normal {
		t.Errorf("monthly default = %q, want %q", got[1].Default, classify.Normal)
	}
}

func TestJobRows(t *testing.T) {
	if rows := jobRows(nil); rows != nil {
		t.Errorf("jobRows(nil) = %v", rows)
	}

	ran := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	rows := jobRows(func() []tasks.JobStatus {
		return []tasks.JobStatus{
			{Name: "startup", Runs: 1, LastRun: ran, LastDuration: 1500 * time.Microsecond},
			{Name: "calllog-prune", Interval: time.Hour},
		}
	})
	want := []JobVM{
		{Name: "startup", Interval: "once", Runs: 1, LastRun: "Mar 01, 2025 09:30:00 UTC", Duration: "2ms"},
		{Name: "calllog-prune", Interval: "1h0m0s"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("jobRows mismatch (-want +got):\n%s", diff)
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"abc":        "****",
		"abcdefgh":   "ab****gh",
		"0123456789": "01******89",
	}
	for in, want := range tests {
		if got := mask(in); got != want {
			t.Errorf("mask(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskURI(t *testing.T) {
	tests := map[string]string{
		"":                                    "",
		"mongodb://localhost:27017":           "mongodb://localhost:27017",
		"mongodb://app:hunter2@db:27017/?x=1": "mongodb://app:****@db:27017/?x=1",
	}
	for in, want := range tests {
		if got := maskURI(in); got != want {
			t.Errorf("maskURI(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatBytes(512); got != "512 B" {
		t.Errorf("formatBytes(512) = %q", got)
	}
	if got := formatBytes(3 * 1024 * 1024); got != "3.0 MiB" {
		t.Errorf("formatBytes(3MiB) = %q", got)
	}
	if got := formatDuration(26 * time.Hour); got != "1 day 2 hours" {
		t.Errorf("formatDuration(26h) = %q", got)
	}
	if got := formatExpiresIn(-time.Minute); got != "expired" {
		t.Errorf("formatExpiresIn(-1m) = %q", got)
	}
}

func TestBuildConfigGroups_MasksSecrets(t *testing.T) {
	groups := buildConfigGroups(nil, AppConfig{SessionKey: "0123456789abcdef", CSRFKey: "fedcba9876543210"})
	for _, g := range groups {
		for _, item := range g.Items {
			if item.Value == "0123456789abcdef" || item.Value == "fedcba9876543210" {
				t.Errorf("%s/%s shown unmasked", g.Name, item.Name)
			}
		}
	}
}
