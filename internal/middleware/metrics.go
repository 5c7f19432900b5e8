package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
)

// Metrics stores application counters.
type Metrics struct {
	RequestsTotal      atomic.Uint64
	RequestsInProgress atomic.Int64
	RequestsSuccess    atomic.Uint64
	RequestsFailed     atomic.Uint64
	AnalysesTotal      atomic.Uint64
	AnalysesDemo       atomic.Uint64
	AnalysesFailed     atomic.Uint64
	AnalysesReviewed   atomic.Uint64
	MedicationUpdates  atomic.Uint64
	StartTime          time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

// Observe counts a domain event; it is meant to be subscribed to the event bus.
func (m *Metrics) Observe(_ context.Context, e analysis.Event) {
	switch e.Kind {
	case analysis.EventAnalysisCompleted:
		m.AnalysesTotal.Add(1)
		if e.IsDemo {
			m.AnalysesDemo.Add(1)
		}
	case analysis.EventAnalysisFailed:
		m.AnalysesFailed.Add(1)
	case analysis.EventAnalysisReviewed:
		m.AnalysesReviewed.Add(1)
	case analysis.EventMedicationsUpdated:
		m.MedicationUpdates.Add(1)
	}
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]any{
		"requests_total":       m.RequestsTotal.Load(),
		"requests_in_progress": m.RequestsInProgress.Load(),
		"requests_success":     m.RequestsSuccess.Load(),
		"requests_failed":      m.RequestsFailed.Load(),
		"analyses_total":       m.AnalysesTotal.Load(),
		"analyses_demo":        m.AnalysesDemo.Load(),
		"analyses_failed":      m.AnalysesFailed.Load(),
		"analyses_reviewed":    m.AnalysesReviewed.Load(),
		"medication_updates":   m.MedicationUpdates.Load(),
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
		"memory": map[string]any{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Middleware tracks request counters
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RequestsTotal.Add(1)
		m.RequestsInProgress.Add(1)
		defer m.RequestsInProgress.Add(-1)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			m.RequestsSuccess.Add(1)
		} else {
			m.RequestsFailed.Add(1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m.Snapshot())
}
