// Package health aggregates pluggable health indicators into a single
// actuator-style verdict and serves it over HTTP.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"healthdemo/internal/status"
)

// Status is the verdict reported by an indicator or by the aggregate.
type Status string

const (
	StatusUp           Status = "UP"
	StatusDown         Status = "DOWN"
	StatusOutOfService Status = "OUT_OF_SERVICE"
	StatusUnknown      Status = "UNKNOWN"
)

// severity orders statuses for aggregation; lower wins.
var severity = map[Status]int{
	StatusDown:         0,
	StatusOutOfService: 1,
	StatusUp:           2,
	StatusUnknown:      3,
}

func rank(s Status) int {
	if r, ok := severity[s]; ok {
		return r
	}
	return severity[StatusUnknown]
}

// HTTPStatusCode maps a verdict to the response code returned by probes.
func (s Status) HTTPStatusCode() int {
	switch s {
	case StatusDown, StatusOutOfService:
		return http.StatusServiceUnavailable
	default:
		return http.StatusOK
	}
}

// Health is the result of evaluating a single indicator.
type Health struct {
	Status  Status         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// Up returns an UP health with no details.
func Up() Health { return Health{Status: StatusUp} }

// Down returns a DOWN health with no details.
func Down() Health { return Health{Status: StatusDown} }

// Indicator supplies a health verdict. Implementations must be safe to call
// concurrently and must not cache.
type Indicator interface {
	Health(ctx context.Context) Health
}

// IndicatorFunc adapts a plain function to the Indicator interface.
type IndicatorFunc func(ctx context.Context) Health

// Health calls f(ctx).
func (f IndicatorFunc) Health(ctx context.Context) Health {
	return f(ctx)
}

// Liveness reports UP while the store is live and DOWN otherwise.
func Liveness(store status.Store) Indicator {
	return IndicatorFunc(func(_ context.Context) Health {
		if store.Live() {
			return Up()
		}
		return Down()
	})
}

// Result is the aggregated verdict across all registered indicators.
type Result struct {
	Status     Status            `json:"status"`
	Components map[string]Health `json:"components,omitempty"`
}

// Checker holds the named indicators for a service.
type Checker struct {
	mu         sync.RWMutex
	indicators map[string]Indicator
}

// NewChecker creates an empty checker. An empty checker reports UP.
func NewChecker() *Checker {
	return &Checker{
		indicators: make(map[string]Indicator),
	}
}

// Register adds or replaces the indicator under name.
func (c *Checker) Register(name string, indicator Indicator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indicators[name] = indicator
}

// Names returns the registered indicator names in sorted order.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.indicators))
	for name := range c.indicators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check evaluates every indicator and aggregates by severity:
// DOWN, then OUT_OF_SERVICE, then UP, then UNKNOWN.
func (c *Checker) Check(ctx context.Context) Result {
	c.mu.RLock()
	snapshot := make(map[string]Indicator, len(c.indicators))
	for name, indicator := range c.indicators {
		snapshot[name] = indicator
	}
	c.mu.RUnlock()

	result := Result{
		Status:     StatusUp,
		Components: make(map[string]Health, len(snapshot)),
	}
	if len(snapshot) == 0 {
		return result
	}

	aggregate := StatusUnknown
	for name, indicator := range snapshot {
		h := indicator.Health(ctx)
		if h.Status == "" {
			h.Status = StatusUnknown
		}
		result.Components[name] = h
		if rank(h.Status) < rank(aggregate) {
			aggregate = h.Status
		}
	}
	result.Status = aggregate
	return result
}

// CheckComponent evaluates a single indicator. The boolean is false when no
// indicator is registered under name.
func (c *Checker) CheckComponent(ctx context.Context, name string) (Health, bool) {
	c.mu.RLock()
	indicator, ok := c.indicators[name]
	c.mu.RUnlock()
	if !ok {
		return Health{}, false
	}
	h := indicator.Health(ctx)
	if h.Status == "" {
		h.Status = StatusUnknown
	}
	return h, true
}
