package api

import (
	"context"
	"sort"
	"sync"
	"time"
)

// RouteMetrics aggregates request timings for a single method+path pair
type RouteMetrics struct {
	Method      string
	Path        string
	Count       int64
	ErrorCount  int64
	AvgTime     time.Duration
	MinTime     time.Duration
	MaxTime     time.Duration
	P50Time     time.Duration
	P95Time     time.Duration
	P99Time     time.Duration
	LastRequest time.Time

	durations []time.Duration
}

// DBQueryTrace records a single database call made while serving a request
type DBQueryTrace struct {
	Operation  string
	Collection string
	Duration   time.Duration
	Error      string
	Timestamp  time.Time
}

// RequestTrace follows one request through middleware, handler and database
type RequestTrace struct {
	RequestID     string
	Method        string
	Path          string
	Status        int
	StartTime     time.Time
	EndTime       time.Time
	TotalDuration time.Duration
	DBQueries     []DBQueryTrace
	Error         string

	mu sync.Mutex
}

// AddDBQuery appends a database call to the trace
func (t *RequestTrace) AddDBQuery(q DBQueryTrace) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.DBQueries = append(t.DBQueries, q)
}

type traceContextKey struct{}

// WithRequestTrace attaches a trace to the context
func WithRequestTrace(ctx context.Context, trace *RequestTrace) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// TraceFromContext returns the request trace, or nil when untraced
func TraceFromContext(ctx context.Context) *RequestTrace {
	trace, _ := ctx.Value(traceContextKey{}).(*RequestTrace)
	return trace
}

// metricsRegistry keeps a bounded in-memory view of route timings and
// recent traces for the admin dashboard
type metricsRegistry struct {
	mu     sync.RWMutex
	routes map[string]*RouteMetrics
	traces []*RequestTrace
}

const maxTraces = 200

// keep the rolling duration window small enough that percentiles stay cheap
const maxDurationSamples = 512

var registry = &metricsRegistry{
	routes: make(map[string]*RouteMetrics),
}

// RecordRequest folds a finished request into the registry
func RecordRequest(trace *RequestTrace) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	key := trace.Method + " " + trace.Path
	rm, ok := registry.routes[key]
	if !ok {
		rm = &RouteMetrics{Method: trace.Method, Path: trace.Path, MinTime: trace.TotalDuration}
		registry.routes[key] = rm
	}

	rm.Count++
	if trace.Status >= 400 {
		rm.ErrorCount++
	}
	rm.LastRequest = trace.EndTime

	d := trace.TotalDuration
	if d < rm.MinTime || rm.Count == 1 {
		rm.MinTime = d
	}
	if d > rm.MaxTime {
		rm.MaxTime = d
	}
	rm.durations = append(rm.durations, d)
	if len(rm.durations) > maxDurationSamples {
		rm.durations = rm.durations[len(rm.durations)-maxDurationSamples:]
	}

	var total time.Duration
	for _, v := range rm.durations {
		total += v
	}
	rm.AvgTime = total / time.Duration(len(rm.durations))

	sorted := make([]time.Duration, len(rm.durations))
	copy(sorted, rm.durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	rm.P50Time = percentile(sorted, 50)
	rm.P95Time = percentile(sorted, 95)
	rm.P99Time = percentile(sorted, 99)

	registry.traces = append(registry.traces, trace)
	if len(registry.traces) > maxTraces {
		registry.traces = registry.traces[len(registry.traces)-maxTraces:]
	}
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := (len(sorted)*p + 99) / 100
	if idx > 0 {
		idx--
	}
	return sorted[idx]
}

// RouteMetricsSnapshot returns a copy of all route metrics sorted by count desc
func RouteMetricsSnapshot() []*RouteMetrics {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	out := make([]*RouteMetrics, 0, len(registry.routes))
	for _, rm := range registry.routes {
		c := *rm
		c.durations = nil
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// RecentTraces returns up to n of the most recent request traces
func RecentTraces(n int) []*RequestTrace {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	if n <= 0 || n > len(registry.traces) {
		n = len(registry.traces)
	}
	out := make([]*RequestTrace, n)
	copy(out, registry.traces[len(registry.traces)-n:])
	return out
}

// ResetMetrics clears the registry, used by tests and the reset endpoint
func ResetMetrics() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.routes = make(map[string]*RouteMetrics)
	registry.traces = nil
}
