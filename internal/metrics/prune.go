package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prune run metrics
var (
	// RunDuration tracks how long a whole run takes
	RunDuration prometheus.Histogram

	// FilesRemovedTotal tracks whole files deleted
	FilesRemovedTotal prometheus.Counter

	// MethodsPrunedTotal tracks method spans deleted
	MethodsPrunedTotal prometheus.Counter

	// LinesRemovedTotal tracks source lines deleted by method pruning
	LinesRemovedTotal prometheus.Counter

	// SpanLines tracks the size of each deleted span
	SpanLines prometheus.Histogram

	// UnresolvedTotal tracks fragments skipped, labelled by reason
	UnresolvedTotal *prometheus.CounterVec

	// ErrorsTotal tracks fatal errors that aborted a run
	ErrorsTotal prometheus.Counter

	// LastRunTimestamp records Unix timestamp of the last run
	LastRunTimestamp prometheus.Gauge

	// LastRunSuccess is 1 when the last run completed without a fatal error
	LastRunSuccess prometheus.Gauge
)

// initPruneMetrics initializes all prune metrics
func initPruneMetrics() {
	RunDuration = NewDurationHistogram(
		"distprune_run_duration_seconds",
		"Duration of prune runs in seconds.",
	)

	FilesRemovedTotal = NewCounter(
		"distprune_files_removed_total",
		"Total number of files removed from the source tree.",
	)

	MethodsPrunedTotal = NewCounter(
		"distprune_methods_pruned_total",
		"Total number of method spans deleted.",
	)

	LinesRemovedTotal = NewCounter(
		"distprune_lines_removed_total",
		"Total number of source lines deleted by method pruning.",
	)

	SpanLines = NewLineHistogram(
		"distprune_span_lines",
		"Number of lines in each deleted method span.",
	)

	UnresolvedTotal = NewCounterVec(
		"distprune_signatures_unresolved_total",
		"Total number of signature fragments left in place, by reason.",
		[]string{"reason"},
	)

	ErrorsTotal = NewCounter(
		"distprune_errors_total",
		"Total number of fatal errors that aborted a run.",
	)

	LastRunTimestamp = NewGauge(
		"distprune_last_run_timestamp",
		"Timestamp of the last run (Unix epoch seconds).",
	)

	LastRunSuccess = NewGauge(
		"distprune_last_run_success",
		"1 if the last run completed without a fatal error, 0 otherwise.",
	)
}

// registerPruneMetrics registers all prune metrics with Prometheus
func registerPruneMetrics() {
	prometheus.MustRegister(RunDuration)
	prometheus.MustRegister(FilesRemovedTotal)
	prometheus.MustRegister(MethodsPrunedTotal)
	prometheus.MustRegister(LinesRemovedTotal)
	prometheus.MustRegister(SpanLines)
	prometheus.MustRegister(UnresolvedTotal)
	prometheus.MustRegister(ErrorsTotal)
	prometheus.MustRegister(LastRunTimestamp)
	prometheus.MustRegister(LastRunSuccess)
}

// RecordFileRemoved counts one deleted file
func RecordFileRemoved() {
	FilesRemovedTotal.Inc()
}

// RecordMethodPruned counts one deleted span of the given length
func RecordMethodPruned(lines int) {
	MethodsPrunedTotal.Inc()
	LinesRemovedTotal.Add(float64(lines))
	SpanLines.Observe(float64(lines))
}

// RecordUnresolved counts one skipped fragment
func RecordUnresolved(reason string) {
	UnresolvedTotal.WithLabelValues(reason).Inc()
}

// RecordRun updates duration, timestamp and success of a finished run
func RecordRun(start time.Time, success bool) {
	RunDuration.Observe(time.Since(start).Seconds())
	LastRunTimestamp.Set(float64(time.Now().Unix()))
	if success {
		LastRunSuccess.Set(1)
	} else {
		LastRunSuccess.Set(0)
		ErrorsTotal.Inc()
	}
}
