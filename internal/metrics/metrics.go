package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var initOnce sync.Once

// Init initializes all metrics and registers them with Prometheus.
// This function is safe to call multiple times (uses sync.Once)
func Init() {
	initOnce.Do(func() {
		initPruneMetrics()
		registerPruneMetrics()

		// Appear in the export even before the first run completes
		LastRunTimestamp.Set(0)
		LastRunSuccess.Set(0)
	})
}

// WriteTextfile exports the default registry in text format for the
// node_exporter textfile collector. The file is written to a temporary
// name and renamed into place.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
