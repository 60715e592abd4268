// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"strings"

	"github.com/dalemusser/stratastock/internal/app/system/tasks"
	"github.com/dalemusser/stratastock/internal/app/system/toast"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is used until Init sets a configured name.
const DefaultSiteName = "StrataStock"

// BaseVM contains common fields for all view models.
// Embed this struct in feature-specific view models:
//
//	data := listData{
//	    BaseVM: viewdata.NewBaseVM(r, "Inventory", "/"),
//	}
type BaseVM struct {
	SiteName string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string
	Section     string // first path segment, drives the active nav entry

	// Security
	CSRFToken string

	// Notifications shown as toasts
	Toasts []toast.Message

	// Backend reachability from the background probe
	BackendDown  bool
	BackendError string

	// Call log link shown only when MongoDB is configured
	CallLogEnabled bool
}

var (
	siteName       = DefaultSiteName
	probe          *tasks.Probe
	callLogEnabled bool
)

// Init sets process-wide values. Call once at startup from bootstrap.
func Init(name string, p *tasks.Probe, callLog bool) {
	if name != "" {
		siteName = name
	}
	probe = p
	callLogEnabled = callLog
}

// NewBaseVM creates a populated BaseVM. Toasts queued on the request so
// far are drained into it, so build the view model after any calls that
// may notify.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:       siteName,
		Title:          title,
		BackURL:        httpnav.ResolveBackURL(r, backDefault),
		CurrentPath:    httpnav.CurrentPath(r),
		Section:        section(r.URL.Path),
		CSRFToken:      csrf.Token(r),
		Toasts:         toast.From(r.Context()).Messages(),
		CallLogEnabled: callLogEnabled,
	}

	if probe != nil {
		last := probe.Last()
		if !last.CheckedAt.IsZero() && !last.OK {
			vm.BackendDown = true
			vm.BackendError = last.Error
		}
	}

	return vm
}

// New creates a BaseVM with no title or back link.
func New(r *http.Request) BaseVM {
	return NewBaseVM(r, "", "/")
}

func section(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return "home"
	}
	first, _, _ := strings.Cut(path, "/")
	return first
}
