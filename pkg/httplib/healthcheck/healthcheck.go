package healthcheck

import (
	"context"
	"net/http"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Pinger reports the health of one dependency. A nil error means healthy.
type Pinger func(ctx context.Context) error

// Report is the body written by the health check.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthCheck is the health check handler.
type HealthCheck struct {
	Dependencies map[string]Pinger
	Timeout      time.Duration
}

// Handler is used to control the flow of GET /health endpoint
func (hc HealthCheck) Handler(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if IsHealthCheckRequest(r) {
			hc.ServeHTTP(w, r)

			return
		}

		h.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

// ServeHTTP pings every dependency and answers 200 when all pass, 503 otherwise.
func (hc HealthCheck) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report := hc.Check(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if report.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(report)
}

// Check pings the dependencies in name order.
func (hc HealthCheck) Check(ctx context.Context) Report {
	if hc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, hc.Timeout)
		defer cancel()
	}

	names := make([]string, 0, len(hc.Dependencies))
	for name := range hc.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	report := Report{Status: "ok"}
	if len(names) > 0 {
		report.Checks = make(map[string]string, len(names))
	}
	for _, name := range names {
		if err := hc.Dependencies[name](ctx); err != nil {
			report.Status = "unavailable"
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = "ok"
	}

	return report
}

// IsHealthCheckRequest is used to check if the request is a health check request
func IsHealthCheckRequest(r *http.Request) bool {
	return r.Method == http.MethodGet && r.URL.Path == "/health"
}
