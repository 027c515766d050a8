package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Checker is a function that checks the health of a dependency.
type Checker func(ctx context.Context) error

// Status represents the health status of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

const defaultCheckTimeout = 3 * time.Second

// Response is the JSON response returned by the health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Service   string                 `json:"service,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the result of a single dependency check.
type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Latency  string `json:"latency"`
	Error    string `json:"error,omitempty"`
}

type registration struct {
	check    Checker
	critical bool
}

// Handler serves liveness and readiness endpoints. Readiness runs every
// registered check concurrently; a failing critical check makes the service
// unready (503), a failing optional one only degrades it.
type Handler struct {
	service string
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]registration
}

// NewHandler creates a health handler for the named service.
func NewHandler(service string) *Handler {
	return &Handler{
		service: service,
		timeout: defaultCheckTimeout,
		checks:  make(map[string]registration),
	}
}

// SetTimeout overrides the per-check timeout.
func (h *Handler) SetTimeout(d time.Duration) {
	if d > 0 {
		h.timeout = d
	}
}

// Register adds a critical dependency check.
func (h *Handler) Register(name string, check Checker) {
	h.register(name, check, true)
}

// RegisterOptional adds a check whose failure degrades but does not fail readiness.
func (h *Handler) RegisterOptional(name string, check Checker) {
	h.register(name, check, false)
}

func (h *Handler) register(name string, check Checker, critical bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = registration{check: check, critical: critical}
}

// Names returns the registered check names in sorted order.
func (h *Handler) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LivenessHandler always reports up while the process is serving requests.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Response{
			Status:    StatusUp,
			Service:   h.service,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler reports the aggregated state of all dependencies.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h.Check(r.Context())

		status := http.StatusOK
		if resp.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

// Check runs every registered check and aggregates the results.
func (h *Handler) Check(ctx context.Context) Response {
	h.mu.RLock()
	checks := make(map[string]registration, len(h.checks))
	for k, v := range h.checks {
		checks[k] = v
	}
	h.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]CheckResult, len(checks))
	)

	for name, reg := range checks {
		wg.Add(1)
		go func(name string, reg registration) {
			defer wg.Done()

			cctx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()

			start := time.Now()
			err := reg.check(cctx)
			res := CheckResult{
				Status:   StatusUp,
				Critical: reg.critical,
				Latency:  time.Since(start).Round(time.Microsecond).String(),
			}
			if err != nil {
				res.Status = StatusDown
				res.Error = err.Error()
			}

			mu.Lock()
			results[name] = res
			mu.Unlock()
		}(name, reg)
	}
	wg.Wait()

	overall := StatusUp
	for _, res := range results {
		if res.Status != StatusDown {
			continue
		}
		if res.Critical {
			overall = StatusDown
			break
		}
		overall = StatusDegraded
	}

	return Response{
		Status:    overall,
		Service:   h.service,
		Timestamp: time.Now().UTC(),
		Checks:    results,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
