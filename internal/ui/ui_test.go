package ui

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"distprune/internal/pipeline"
	"distprune/internal/prune"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prevOut, prevNoColor := Output, color.NoColor
	Output, color.NoColor = buf, true
	t.Cleanup(func() {
		Output, color.NoColor = prevOut, prevNoColor
	})
	return buf
}

// TestPrintSummaryListsUnresolved verifies every unresolved fragment is listed
func TestPrintSummaryListsUnresolved(t *testing.T) {
	buf := capture(t)

	rep := &pipeline.Report{
		BaseDir: "/src/core",
		Removed: []string{filepath.Join("/src/core", "internal", "Image.java")},
		Files: []pipeline.FileReport{{
			FileName: "Node.java",
			Outcomes: []prune.Outcome{
				{Signature: "setHierarchicalRendering", Status: prune.Deleted, Span: prune.Span{Start: 4, End: 8}},
				{Signature: "missing()", Status: prune.NotFound, Span: prune.Span{Start: -1, End: -1}},
			},
		}},
	}
	PrintSummary(rep, nil)

	out := buf.String()
	for _, want := range []string{
		"--- Prune Summary ---",
		"Removed 1 file(s):",
		"internal/Image.java",
		"Pruned 1 method(s), 5 line(s):",
		"Node.java: setHierarchicalRendering (lines 4-8)",
		"Unable to find 1 method(s)",
		"Node.java: missing() [signature_not_found]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

// TestPrintSummaryEmpty verifies the nothing-to-do line
func TestPrintSummaryEmpty(t *testing.T) {
	buf := capture(t)
	PrintSummary(nil, nil)
	if !strings.Contains(buf.String(), "Nothing to do.") {
		t.Errorf("Unexpected output: %s", buf.String())
	}
}

// TestPrintSummaryError verifies a fatal error is printed
func TestPrintSummaryError(t *testing.T) {
	buf := capture(t)
	PrintSummary(&pipeline.Report{}, errors.New("remove entry 0: file not found"))
	if !strings.Contains(buf.String(), "Run aborted: remove entry 0: file not found") {
		t.Errorf("Unexpected output: %s", buf.String())
	}
}
