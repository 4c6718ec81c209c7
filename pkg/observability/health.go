package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const (
	StatusUp   = "up"
	StatusDown = "down"
)

// probeTimeout bounds a whole readiness round
const probeTimeout = 5 * time.Second

// Probe reports whether a dependency can serve requests
type Probe func(ctx context.Context) error

// ProbeResult is the outcome of one probe
type ProbeResult struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// Report is the readiness response body
type Report struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version,omitempty"`
	Checked time.Time              `json:"checked"`
	Probes  map[string]ProbeResult `json:"probes,omitempty"`
}

// HealthChecker serves liveness and readiness for the ops listener
type HealthChecker struct {
	version string

	mu     sync.RWMutex
	names  []string
	probes map[string]Probe
}

// NewHealthChecker creates a checker with no probes; it reports ready until
// one is added.
func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{
		version: version,
		probes:  make(map[string]Probe),
	}
}

// AddProbe registers p under name, replacing an earlier probe of that name
func (h *HealthChecker) AddProbe(name string, p Probe) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.probes[name]; !ok {
		h.names = append(h.names, name)
	}
	h.probes[name] = p
}

// Check runs every probe concurrently. The report is down if any probe is.
func (h *HealthChecker) Check(ctx context.Context) Report {
	h.mu.RLock()
	names := append([]string(nil), h.names...)
	probes := make([]Probe, len(names))
	for i, name := range names {
		probes[i] = h.probes[name]
	}
	h.mu.RUnlock()

	results := make([]ProbeResult, len(names))
	var wg sync.WaitGroup
	for i := range probes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = runProbe(ctx, probes[i])
		}(i)
	}
	wg.Wait()

	report := Report{
		Status:  StatusUp,
		Version: h.version,
		Checked: time.Now().UTC(),
	}
	if len(names) > 0 {
		report.Probes = make(map[string]ProbeResult, len(names))
	}
	for i, name := range names {
		report.Probes[name] = results[i]
		if results[i].Status == StatusDown {
			report.Status = StatusDown
		}
	}
	return report
}

func runProbe(ctx context.Context, p Probe) ProbeResult {
	start := time.Now()
	err := p(ctx)
	res := ProbeResult{Status: StatusUp, LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		res.Status = StatusDown
		res.Error = err.Error()
	}
	return res
}

// Liveness answers 200 as long as the process serves HTTP
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	writeReport(w, http.StatusOK, Report{Status: StatusUp, Version: h.version, Checked: time.Now().UTC()})
}

// Readiness answers 503 while any probe fails
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	report := h.Check(ctx)
	status := http.StatusOK
	if report.Status == StatusDown {
		status = http.StatusServiceUnavailable
	}
	writeReport(w, status, report)
}

func writeReport(w http.ResponseWriter, status int, report Report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(report)
}

// RegisterHealthRoutes mounts /healthz and /readyz
func RegisterHealthRoutes(mux *http.ServeMux, checker *HealthChecker) {
	mux.HandleFunc("/healthz", checker.Liveness)
	mux.HandleFunc("/readyz", checker.Readiness)
}
