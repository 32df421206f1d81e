package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/changebag/causeconnect-api/api"
	"github.com/changebag/causeconnect-api/config"
)

// MetricsHandler serves the in-process route metrics to the admin UI
type MetricsHandler struct{}

type routeMetricsPayload struct {
	Method      string  `json:"method"`
	Path        string  `json:"path"`
	Count       int64   `json:"count"`
	ErrorCount  int64   `json:"errorCount"`
	AvgMs       float64 `json:"avgMs"`
	MinMs       float64 `json:"minMs"`
	MaxMs       float64 `json:"maxMs"`
	P50Ms       float64 `json:"p50Ms"`
	P95Ms       float64 `json:"p95Ms"`
	P99Ms       float64 `json:"p99Ms"`
	LastRequest string  `json:"lastRequest"`
}

func toMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// RouteMetricsHandler returns per-route timing aggregates
func (m MetricsHandler) RouteMetricsHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := api.RouteMetricsSnapshot()

	payload := make([]routeMetricsPayload, 0, len(snapshot))
	for _, rm := range snapshot {
		payload = append(payload, routeMetricsPayload{
			Method:      rm.Method,
			Path:        rm.Path,
			Count:       rm.Count,
			ErrorCount:  rm.ErrorCount,
			AvgMs:       toMs(rm.AvgTime),
			MinMs:       toMs(rm.MinTime),
			MaxMs:       toMs(rm.MaxTime),
			P50Ms:       toMs(rm.P50Time),
			P95Ms:       toMs(rm.P95Time),
			P99Ms:       toMs(rm.P99Time),
			LastRequest: rm.LastRequest.UTC().Format(time.RFC3339),
		})
	}

	b, err := json.Marshal(payload)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type dbQueryPayload struct {
	Operation  string  `json:"operation"`
	Collection string  `json:"collection"`
	DurationMs float64 `json:"durationMs"`
	Error      string  `json:"error,omitempty"`
}

type tracePayload struct {
	RequestID  string           `json:"requestId"`
	Method     string           `json:"method"`
	Path       string           `json:"path"`
	Status     int              `json:"status"`
	StartTime  string           `json:"startTime"`
	DurationMs float64          `json:"durationMs"`
	DBQueries  []dbQueryPayload `json:"dbQueries"`
	Error      string           `json:"error,omitempty"`
}

// TracesHandler returns the most recent request traces, newest first
func (m MetricsHandler) TracesHandler(w http.ResponseWriter, r *http.Request) {
	n := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}

	traces := api.RecentTraces(n)
	payload := make([]tracePayload, 0, len(traces))
	for _, t := range traces {
		queries := make([]dbQueryPayload, 0, len(t.DBQueries))
		for _, q := range t.DBQueries {
			queries = append(queries, dbQueryPayload{
				Operation:  q.Operation,
				Collection: q.Collection,
				DurationMs: toMs(q.Duration),
				Error:      q.Error,
			})
		}
		payload = append(payload, tracePayload{
			RequestID:  t.RequestID,
			Method:     t.Method,
			Path:       t.Path,
			Status:     t.Status,
			StartTime:  t.StartTime.UTC().Format(time.RFC3339Nano),
			DurationMs: toMs(t.TotalDuration),
			DBQueries:  queries,
			Error:      t.Error,
		})
	}

	b, err := json.Marshal(payload)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
