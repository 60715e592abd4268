// internal/app/features/status/handler.go
package status

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/dalemusser/stratastock/internal/app/system/certcheck"
	"github.com/dalemusser/stratastock/internal/app/system/classify"
	"github.com/dalemusser/stratastock/internal/app/system/tasks"
	"github.com/dalemusser/stratastock/internal/app/system/timeouts"
	"github.com/dalemusser/stratastock/internal/app/system/toast"
	"github.com/dalemusser/stratastock/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/server"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

var startTime = time.Now()

// Handler holds dependencies for the status page.
type Handler struct {
	Probe   *tasks.Probe
	Mongo   *mongo.Client // nil when the call log is disabled
	Rules   classify.Set
	Jobs    func() []tasks.JobStatus // nil when no runner is running
	CoreCfg *config.CoreConfig
	AppCfg  AppConfig
	Log     *zap.Logger

	// checkCert is certcheck.Check outside tests.
	checkCert func(hostOrURL string) certcheck.CertInfo
}

// NewHandler creates a new status Handler.
func NewHandler(probe *tasks.Probe, mongoClient *mongo.Client, rules classify.Set, jobs func() []tasks.JobStatus, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) *Handler {
	return &Handler{
		Probe:     probe,
		Mongo:     mongoClient,
		Rules:     rules,
		Jobs:      jobs,
		CoreCfg:   coreCfg,
		AppCfg:    appCfg,
		Log:       logger,
		checkCert: certcheck.Check,
	}
}

// RuleSetVM is one severity rule set for display.
type RuleSetVM struct {
	Name       string
	Default    string
	Thresholds []classify.Threshold
}

// JobVM is one background job for display.
type JobVM struct {
	Name      string
	Interval  string
	Running   bool
	Runs      int
	Failures  int
	LastRun   string
	Duration  string
	LastError string
}

// statusVM is the view model for the status page.
type statusVM struct {
	viewdata.BaseVM

	// Backend reachability from the background probe
	BackendURL       string
	BackendChecked   bool
	BackendOK        bool
	BackendError     string
	BackendLatencyMS int64
	BackendCheckedAt string

	// Backend certificate
	CertHost      string
	CertExpiresAt string
	CertExpiresIn string
	CertDaysLeft  int
	CertIssuer    string
	CertValid     bool
	CertError     string
	CertWarning   bool // true if expiring within 14 days

	// Own certificate renewal (Let's Encrypt)
	CanRenewCert      bool
	CertChallengeType string

	// Call log database
	CallLogEnabled bool
	DBConnected    bool
	DBError        string
	DBPingMS       int64
	DBVersion      string

	RuleSets []RuleSetVM
	Jobs     []JobVM

	// System info
	GoVersion    string
	Uptime       string
	NumGoroutine int
	MemAlloc     string

	ConfigGroups []ConfigGroup
}

// Serve handles GET /status.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	vm := statusVM{
		BaseVM:         viewdata.NewBaseVM(r, "System Status", "/"),
		BackendURL:     h.AppCfg.BackendURL,
		CallLogEnabled: h.Mongo != nil,
		RuleSets:       ruleSets(h.Rules),
		Jobs:           jobRows(h.Jobs),
		GoVersion:      runtime.Version(),
		Uptime:         formatDuration(time.Since(startTime)),
		NumGoroutine:   runtime.NumGoroutine(),
		ConfigGroups:   buildConfigGroups(h.CoreCfg, h.AppCfg),
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	vm.MemAlloc = formatBytes(m.Alloc)

	if h.Probe != nil {
		last := h.Probe.Last()
		if last.CheckedAt.IsZero() {
			_ = h.Probe.Check(ctx)
			last = h.Probe.Last()
		}
		vm.BackendChecked = true
		vm.BackendOK = last.OK
		vm.BackendError = last.Error
		vm.BackendLatencyMS = last.Latency.Milliseconds()
		vm.BackendCheckedAt = last.CheckedAt.Format("Jan 02, 2006 15:04:05 MST")
	}

	if h.Mongo != nil {
		pingStart := time.Now()
		if err := h.Mongo.Ping(ctx, readpref.Primary()); err != nil {
			vm.DBError = err.Error()
			h.Log.Warn("status page: database ping failed", zap.Error(err))
		} else {
			vm.DBConnected = true
			vm.DBPingMS = time.Since(pingStart).Milliseconds()

			var result bson.M
			if err := h.Mongo.Database("admin").RunCommand(ctx, bson.D{{Key: "buildInfo", Value: 1}}).Decode(&result); err == nil {
				if version, ok := result["version"].(string); ok {
					vm.DBVersion = version
				}
			}
		}
	}

	if h.AppCfg.BackendURL != "" && h.checkCert != nil {
		certInfo := h.checkCert(h.AppCfg.BackendURL)
		vm.CertHost = certInfo.Host
		vm.CertValid = certInfo.IsValid
		vm.CertError = certInfo.Error
		vm.CertDaysLeft = certInfo.DaysLeft
		vm.CertIssuer = certInfo.Issuer
		if !certInfo.ExpiresAt.IsZero() {
			vm.CertExpiresAt = certInfo.ExpiresAt.Format("Jan 02, 2006 15:04 MST")
			vm.CertExpiresIn = formatExpiresIn(time.Until(certInfo.ExpiresAt))
		}
		vm.CertWarning = certInfo.DaysLeft > 0 && certInfo.DaysLeft <= 14
	}

	if renewer := server.GetCertRenewer(); renewer != nil {
		vm.CanRenewCert = true
		vm.CertChallengeType = renewer.ChallengeType()
	}

	templates.Render(w, r, "status/index", vm)
}

// HandleRenew handles POST /status/renew to force renewal of this
// server's own certificate.
func (h *Handler) HandleRenew(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	flash := toast.From(r.Context())
	renewer := server.GetCertRenewer()
	if renewer == nil {
		flash.Error("Certificate renewal is not available.")
		flash.Redirect(w, r, "/status")
		return
	}

	h.Log.Info("forcing certificate renewal",
		zap.String("challenge_type", renewer.ChallengeType()))

	newExpiry, err := renewer.ForceRenewal(ctx)
	if err != nil {
		h.Log.Error("certificate renewal failed", zap.Error(err))
		flash.Error("Certificate renewal failed. " + err.Error())
		flash.Redirect(w, r, "/status")
		return
	}

	h.Log.Info("certificate renewal succeeded",
		zap.Time("new_expiry", newExpiry))

	flash.Success("Certificate renewed. New expiry " + newExpiry.Format("Jan 02, 2006") + ".")
	flash.Redirect(w, r, "/status")
}

// ruleSets lists rule sets by name.
func ruleSets(set classify.Set) []RuleSetVM {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]RuleSetVM, 0, len(names))
	for _, name := range names {
		rules := set[name]
		out = append(out, RuleSetVM{
			Name:       name,
			Default:    rules.Default(),
			Thresholds: rules.Thresholds(),
		})
	}
	return out
}

// jobRows formats the runner's job records.
func jobRows(status func() []tasks.JobStatus) []JobVM {
	if status == nil {
		return nil
	}
	var out []JobVM
	for _, st := range status() {
		row := JobVM{
			Name:      st.Name,
			Interval:  "once",
			Running:   st.Running,
			Runs:      st.Runs,
			Failures:  st.Failures,
			LastError: st.LastError,
		}
		if st.Interval > 0 {
			row.Interval = st.Interval.String()
		}
		if !st.LastRun.IsZero() {
			row.LastRun = st.LastRun.Format("Jan 02, 2006 15:04:05 MST")
			row.Duration = st.LastDuration.Round(time.Millisecond).String()
		}
		out = append(out, row)
	}
	return out
}
