package pipeline

import (
	"time"

	"distprune/internal/prune"
)

// FileReport holds the outcomes of every fragment applied to one file
type FileReport struct {
	FileName string // as listed in the config
	Path     string // joined with the base directory
	Outcomes []prune.Outcome
}

// Unresolved returns the outcomes that left the file untouched
func (f FileReport) Unresolved() []prune.Outcome {
	var out []prune.Outcome
	for _, o := range f.Outcomes {
		if !o.Resolved() {
			out = append(out, o)
		}
	}
	return out
}

// Report summarizes one run
type Report struct {
	RunID     int64 // 0 when history is disabled
	BaseDir   string
	StartedAt time.Time
	Duration  time.Duration
	Removed   []string
	Files     []FileReport
}

// MethodsPruned counts deleted spans across all files
func (r *Report) MethodsPruned() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Outcomes) - len(f.Unresolved())
	}
	return n
}

// LinesRemoved counts lines deleted by method pruning
func (r *Report) LinesRemoved() int {
	n := 0
	for _, f := range r.Files {
		for _, o := range f.Outcomes {
			if o.Resolved() {
				n += o.Span.Len()
			}
		}
	}
	return n
}

// Unresolved counts fragments left in place across all files
func (r *Report) Unresolved() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Unresolved())
	}
	return n
}
