// Package pipeline runs one prune pass over a source tree: the listed files
// are removed first, then method fragments are cut from the files that remain.
package pipeline

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"distprune/internal/config"
	"distprune/internal/database"
	"distprune/internal/fsops"
	"distprune/internal/logging"
	"distprune/internal/metrics"
	"distprune/internal/prune"
	"distprune/internal/remover"
	"distprune/internal/safety"
	"distprune/internal/source"
)

// ErrUnsafeTarget is returned when a prune target resolves outside the base directory
var ErrUnsafeTarget = errors.New("unsafe prune target")

// Runner executes prune runs and records them
type Runner struct {
	logger  *log.Logger
	leveled logging.Leveled
	db      *database.RunDB
	deleter fsops.Deleter
}

// NewRunner creates a Runner. db may be nil to disable run history.
func NewRunner(logger *log.Logger, db *database.RunDB) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	metrics.Init()
	return &Runner{
		logger:  logger,
		leveled: logging.Wrap(logger),
		db:      db,
		deleter: fsops.OSDeleter{},
	}
}

// SetDeleter replaces the deleter used for file removal
func (r *Runner) SetDeleter(d fsops.Deleter) {
	r.deleter = d
}

// Run removes spec's files below baseDir and then prunes its methods.
//
// A removal failure or a read/write failure of a prune target aborts the run
// and is returned together with the partial report. Unresolved fragments do
// not abort; they are listed in the report.
func (r *Runner) Run(baseDir string, spec config.PruneSpec) (*Report, error) {
	rep := &Report{BaseDir: baseDir, StartedAt: time.Now()}
	r.startRun(rep)

	err := r.run(rep, spec)

	rep.Duration = time.Since(rep.StartedAt)
	metrics.RecordRun(rep.StartedAt, err == nil)
	r.finishRun(rep, err)

	if err != nil {
		r.leveled.Error("Run aborted", "error", err)
		return rep, err
	}
	r.logger.Printf("run complete: removed=%d pruned=%d lines=%d unresolved=%d duration=%.3fs",
		len(rep.Removed), rep.MethodsPruned(), rep.LinesRemoved(), rep.Unresolved(), rep.Duration.Seconds())
	return rep, nil
}

func (r *Runner) run(rep *Report, spec config.PruneSpec) error {
	validator := safety.NewValidator(rep.BaseDir, nil)

	rm := remover.New(rep.BaseDir, r.logger)
	rm.SetDeleter(r.deleter)
	rm.SetValidator(validator)
	rm.OnRemove(func(path string) {
		metrics.RecordFileRemoved()
		r.recordEvent(rep, database.EventRecord{Action: database.ActionRemoveFile, Path: path})
	})

	removed, err := rm.RemoveFiles(spec.FilesToRemove())
	rep.Removed = removed
	if err != nil {
		var rerr *remover.RemovalError
		if errors.As(err, &rerr) {
			r.recordEvent(rep, database.EventRecord{
				Action:       database.ActionError,
				Path:         rerr.Path,
				Reason:       rerr.Reason(),
				ErrorMessage: err.Error(),
			})
		}
		return err
	}

	for _, target := range spec.MethodsToDelete() {
		path := filepath.Join(rep.BaseDir, target.FileName)
		if err := validator.ValidateRemoveTarget(path); err != nil {
			r.recordEvent(rep, database.EventRecord{
				Action: database.ActionError, Path: path, Reason: "unsafe_path", ErrorMessage: err.Error(),
			})
			return fmt.Errorf("%w: %s: %w", ErrUnsafeTarget, target.FileName, err)
		}

		fr, err := r.pruneFile(rep, path, target)
		if err != nil {
			r.recordEvent(rep, database.EventRecord{
				Action: database.ActionError, Path: path, Reason: "io_error", ErrorMessage: err.Error(),
			})
			return err
		}
		rep.Files = append(rep.Files, fr)
	}
	return nil
}

func (r *Runner) pruneFile(rep *Report, path string, target config.MethodTarget) (FileReport, error) {
	fr := FileReport{FileName: target.FileName, Path: path}
	r.leveled.Info("Reading file", "path", path, "signatures", len(target.Signatures))

	err := source.Edit(path, func(f *source.File) error {
		text, outcomes := prune.Methods(f.Text(), target.Signatures)
		f.Set(text)
		fr.Outcomes = outcomes
		return nil
	})
	if err != nil {
		return fr, fmt.Errorf("prune %s: %w", target.FileName, err)
	}

	for _, o := range fr.Outcomes {
		ev := database.EventRecord{Path: path, Signature: o.Signature}
		if o.Resolved() {
			r.leveled.Info("Pruned method", "file", target.FileName, "detail", o.ToLogString())
			metrics.RecordMethodPruned(o.Span.Len())
			ev.Action = database.ActionPruneMethod
			ev.StartLine = intPtr(o.Span.Start)
			ev.EndLine = intPtr(o.Span.End)
			ev.LinesRemoved = o.Span.Len()
		} else {
			r.leveled.Warn("Unable to find method", "file", target.FileName, "detail", o.ToLogString())
			metrics.RecordUnresolved(o.Status.String())
			ev.Action = database.ActionSkip
			ev.Reason = o.Status.String()
			if o.Status == prune.Unbounded {
				ev.StartLine = intPtr(o.Span.Start)
			}
		}
		r.recordEvent(rep, ev)
	}
	return fr, nil
}

func (r *Runner) startRun(rep *Report) {
	if r.db == nil {
		return
	}
	id, err := r.db.StartRun(rep.BaseDir, rep.StartedAt)
	if err != nil {
		// History is best effort, the run proceeds without it
		r.leveled.Error("Failed to record run start", "error", err)
		return
	}
	rep.RunID = id
}

func (r *Runner) finishRun(rep *Report, runErr error) {
	if r.db == nil || rep.RunID == 0 {
		return
	}
	rec := database.RunRecord{
		ID:            rep.RunID,
		Status:        database.StatusCompleted,
		FilesRemoved:  len(rep.Removed),
		MethodsPruned: rep.MethodsPruned(),
		LinesRemoved:  rep.LinesRemoved(),
		Unresolved:    rep.Unresolved(),
	}
	if runErr != nil {
		rec.Status = database.StatusFailed
		rec.ErrorMessage = runErr.Error()
	}
	if err := r.db.FinishRun(rec); err != nil {
		r.leveled.Error("Failed to record run result", "run_id", rep.RunID, "error", err)
	}
}

func (r *Runner) recordEvent(rep *Report, ev database.EventRecord) {
	if r.db == nil || rep.RunID == 0 {
		return
	}
	ev.RunID = rep.RunID
	if err := r.db.RecordEvent(ev); err != nil {
		r.leveled.Error("Failed to record event", "action", ev.Action, "path", ev.Path, "error", err)
	}
}

func intPtr(v int) *int { return &v }
