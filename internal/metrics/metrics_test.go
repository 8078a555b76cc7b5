package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestInitIdempotent verifies Init can be called repeatedly
func TestInitIdempotent(t *testing.T) {
	Init()
	Init()

	if FilesRemovedTotal == nil || UnresolvedTotal == nil || RunDuration == nil {
		t.Fatal("Expected metrics to be initialized")
	}
}

// TestRecordHelpers verifies counters move by the recorded amounts
func TestRecordHelpers(t *testing.T) {
	Init()

	files := testutil.ToFloat64(FilesRemovedTotal)
	methods := testutil.ToFloat64(MethodsPrunedTotal)
	lines := testutil.ToFloat64(LinesRemovedTotal)
	notFound := testutil.ToFloat64(UnresolvedTotal.WithLabelValues("signature_not_found"))

	RecordFileRemoved()
	RecordMethodPruned(5)
	RecordMethodPruned(3)
	RecordUnresolved("signature_not_found")

	if got := testutil.ToFloat64(FilesRemovedTotal) - files; got != 1 {
		t.Errorf("files_removed delta = %v, expected 1", got)
	}
	if got := testutil.ToFloat64(MethodsPrunedTotal) - methods; got != 2 {
		t.Errorf("methods_pruned delta = %v, expected 2", got)
	}
	if got := testutil.ToFloat64(LinesRemovedTotal) - lines; got != 8 {
		t.Errorf("lines_removed delta = %v, expected 8", got)
	}
	if got := testutil.ToFloat64(UnresolvedTotal.WithLabelValues("signature_not_found")) - notFound; got != 1 {
		t.Errorf("unresolved delta = %v, expected 1", got)
	}
}

// TestRecordRun verifies the success gauge and error counter
func TestRecordRun(t *testing.T) {
	Init()

	errs := testutil.ToFloat64(ErrorsTotal)

	RecordRun(time.Now().Add(-time.Second), true)
	if testutil.ToFloat64(LastRunSuccess) != 1 {
		t.Error("Expected last_run_success=1 after successful run")
	}
	if testutil.ToFloat64(LastRunTimestamp) == 0 {
		t.Error("Expected last_run_timestamp to be set")
	}

	RecordRun(time.Now(), false)
	if testutil.ToFloat64(LastRunSuccess) != 0 {
		t.Error("Expected last_run_success=0 after failed run")
	}
	if got := testutil.ToFloat64(ErrorsTotal) - errs; got != 1 {
		t.Errorf("errors delta = %v, expected 1", got)
	}
}

// TestWriteTextfile verifies the export contains the prune metrics
func TestWriteTextfile(t *testing.T) {
	Init()
	RecordFileRemoved()

	path := filepath.Join(t.TempDir(), "distprune.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read textfile: %v", err)
	}
	for _, name := range []string{"distprune_files_removed_total", "distprune_last_run_success"} {
		if !strings.Contains(string(data), name) {
			t.Errorf("Expected %s in textfile output", name)
		}
	}
}

// TestWriteTextfileBadDir verifies export errors are returned
func TestWriteTextfileBadDir(t *testing.T) {
	Init()
	path := filepath.Join(t.TempDir(), "missing", "distprune.prom")
	if err := WriteTextfile(path); err == nil {
		t.Error("Expected error writing into a missing directory")
	}
}
