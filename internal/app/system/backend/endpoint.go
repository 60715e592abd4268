// internal/app/system/backend/endpoint.go
package backend

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Endpoint describes one backend operation. Path may contain {name}
// segments that are filled from Params.
type Endpoint struct {
	Method string
	Path   string
}

// Backend operations.
var (
	Health            = Endpoint{http.MethodGet, "/"}
	ListItems         = Endpoint{http.MethodGet, "/inventory/"}
	GetItem           = Endpoint{http.MethodGet, "/inventory/{id}"}
	CreateItem        = Endpoint{http.MethodPost, "/inventory/"}
	UpdateItem        = Endpoint{http.MethodPut, "/inventory/{id}"}
	DeleteItem        = Endpoint{http.MethodDelete, "/inventory/{id}"}
	InventoryStats    = Endpoint{http.MethodGet, "/inventory/stats/"}
	CreateTransaction = Endpoint{http.MethodPost, "/stock/transaction/"}
	ForecastSingleDay = Endpoint{http.MethodPost, "/forecast/single-day"}
	ForecastAllStores = Endpoint{http.MethodPost, "/forecast/single-day-all-stores"}
	ForecastMonthly   = Endpoint{http.MethodPost, "/forecast/monthly"}
	ForecastDateRange = Endpoint{http.MethodPost, "/forecast/date-range"}
	ReloadModel       = Endpoint{http.MethodPost, "/forecast/reload-model"}
)

// Params holds path parameter values.
type Params map[string]string

func (e Endpoint) String() string {
	return e.Method + " " + e.Path
}

// Expand substitutes path parameters. Every {name} in the path must have
// a non-empty value in p.
func (e Endpoint) Expand(p Params) (string, error) {
	path := e.Path
	var b strings.Builder
	for {
		open := strings.IndexByte(path, '{')
		if open < 0 {
			b.WriteString(path)
			break
		}
		end := strings.IndexByte(path[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("backend: unterminated parameter in %q", e.Path)
		}
		name := path[open+1 : open+end]
		val := p[name]
		if val == "" {
			return "", fmt.Errorf("backend: missing path parameter %q for %s", name, e)
		}
		b.WriteString(path[:open])
		b.WriteString(url.PathEscape(val))
		path = path[open+end+1:]
	}
	return b.String(), nil
}
