package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"distprune/internal/pipeline"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
)

// Output receives everything this package prints
var Output io.Writer = os.Stderr

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(Output, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(Output, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(Output, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(Output, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(Output, format+"\n", a...)
}

// --- Summaries ---

// PrintSummary lists removed files, pruned methods and every fragment that
// still needs manual follow-up. runErr, when set, is printed last.
func PrintSummary(rep *pipeline.Report, runErr error) {
	Header("\n--- Prune Summary ---")

	if rep == nil {
		rep = &pipeline.Report{}
	}

	if len(rep.Removed) == 0 && len(rep.Files) == 0 && runErr == nil {
		Info("Nothing to do.")
		return
	}

	if len(rep.Removed) > 0 {
		Success("Removed %d file(s):", len(rep.Removed))
		for _, p := range rep.Removed {
			fmt.Fprintf(Output, "  - %s\n", relative(rep.BaseDir, p))
		}
	}

	if n := rep.MethodsPruned(); n > 0 {
		Success("Pruned %d method(s), %d line(s):", n, rep.LinesRemoved())
		for _, f := range rep.Files {
			for _, o := range f.Outcomes {
				if o.Resolved() {
					fmt.Fprintf(Output, "  - %s: %s (lines %s)\n", f.FileName, o.Signature, o.Span)
				}
			}
		}
	}

	if n := rep.Unresolved(); n > 0 {
		Warning("Unable to find %d method(s), remove them manually:", n)
		for _, f := range rep.Files {
			for _, o := range f.Unresolved() {
				fmt.Fprintf(Output, "  - %s: %s [%s]\n", f.FileName, o.Signature, o.Status)
			}
		}
	}

	if runErr != nil {
		Error("Run aborted: %v", runErr)
	}
}

func relative(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
