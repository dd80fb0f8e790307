package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	analysisStartedTotal   atomic.Uint64
	analysisCompletedTotal atomic.Uint64
	analysisDegradedTotal  atomic.Uint64
	passDegradedTotal      atomic.Uint64
	scoreComputedTotal     atomic.Uint64
	caseEscalatedTotal     atomic.Uint64
	remindersScheduled     atomic.Uint64
	remindersFired         atomic.Uint64
	notificationFailed     atomic.Uint64
	schedulingFailed       atomic.Uint64

	analysisDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	analysisStartedTotal.Add(1)
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	analysisCompletedTotal.Add(1)
}

// IncAnalysisDegraded counts reports assembled with at least one defaulted pass.
func IncAnalysisDegraded() {
	analysisDegradedTotal.Add(1)
}

// IncPassDegraded counts individual passes that fell back to their default.
func IncPassDegraded() {
	passDegradedTotal.Add(1)
}

// IncScoreComputed counts score evaluations.
func IncScoreComputed() {
	scoreComputedTotal.Add(1)
}

// IncCaseEscalated counts cases entering the escalated state.
func IncCaseEscalated() {
	caseEscalatedTotal.Add(1)
}

// IncRemindersScheduled counts successfully scheduled reminder plans.
func IncRemindersScheduled() {
	remindersScheduled.Add(1)
}

// IncRemindersFired counts reminder tasks fired by the worker.
func IncRemindersFired() {
	remindersFired.Add(1)
}

// IncNotificationFailed counts notification dispatch failures.
func IncNotificationFailed() {
	notificationFailed.Add(1)
}

// IncSchedulingFailed counts deferred-task scheduling failures.
func IncSchedulingFailed() {
	schedulingFailed.Add(1)
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "analysis_started_total", "Total analyses started", analysisStartedTotal.Load())
	writeCounter(&buf, "analysis_completed_total", "Total analyses completed", analysisCompletedTotal.Load())
	writeCounter(&buf, "analysis_degraded_total", "Total analyses completed with degraded passes", analysisDegradedTotal.Load())
	writeCounter(&buf, "analysis_pass_degraded_total", "Total analysis passes that fell back to defaults", passDegradedTotal.Load())
	writeCounter(&buf, "score_computed_total", "Total score evaluations", scoreComputedTotal.Load())
	writeCounter(&buf, "case_escalated_total", "Total cases escalated", caseEscalatedTotal.Load())
	writeCounter(&buf, "reminders_scheduled_total", "Total reminder plans scheduled", remindersScheduled.Load())
	writeCounter(&buf, "reminders_fired_total", "Total reminder tasks fired", remindersFired.Load())
	writeCounter(&buf, "notification_failed_total", "Total notification dispatch failures", notificationFailed.Load())
	writeCounter(&buf, "scheduling_failed_total", "Total deferred-task scheduling failures", schedulingFailed.Load())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
