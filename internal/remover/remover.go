// Package remover deletes whole files from the source tree, stopping at the
// first failure.
package remover

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"distprune/internal/fsops"
	"distprune/internal/logging"
	"distprune/internal/safety"
)

var (
	ErrFileNotFound     = errors.New("file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotAFile         = errors.New("not a regular file")
	ErrUnsafePath       = errors.New("unsafe path")
)

// RemovalError reports the entry that aborted a run.
// It unwraps to one of the sentinels above and to the underlying cause.
type RemovalError struct {
	Index int    // position in the removal list
	Path  string // joined path handed to the deleter
	Err   error
}

func (e *RemovalError) Error() string {
	return fmt.Sprintf("remove entry %d %s: %v", e.Index, e.Path, e.Err)
}

func (e *RemovalError) Unwrap() error {
	return e.Err
}

// Reason is a short machine-readable failure kind for history records
func (e *RemovalError) Reason() string {
	switch {
	case errors.Is(e.Err, ErrFileNotFound):
		return "file_not_found"
	case errors.Is(e.Err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(e.Err, ErrNotAFile):
		return "not_a_file"
	case errors.Is(e.Err, ErrUnsafePath):
		return "unsafe_path"
	default:
		return "io_error"
	}
}

// Remover deletes files below one base directory
type Remover struct {
	baseDir   string
	logger    logging.Leveled
	deleter   fsops.Deleter
	validator *safety.Validator
	onRemove  func(path string)
}

// New creates a Remover for baseDir using the real filesystem
func New(baseDir string, logger *log.Logger) *Remover {
	return &Remover{
		baseDir:   baseDir,
		logger:    logging.Wrap(logger),
		deleter:   fsops.OSDeleter{},
		validator: safety.NewValidator(baseDir, nil),
	}
}

// SetDeleter replaces the deleter (tests use fsops.FakeDeleter)
func (r *Remover) SetDeleter(d fsops.Deleter) {
	r.deleter = d
}

// SetValidator replaces the safety validator
func (r *Remover) SetValidator(v *safety.Validator) {
	r.validator = v
}

// OnRemove registers a callback invoked after each successful deletion
func (r *Remover) OnRemove(fn func(path string)) {
	r.onRemove = fn
}

// RemoveFiles deletes baseDir/p for every p in paths, in order.
//
// Every target is checked before the first deletion: a missing, unsafe or
// non-file entry aborts with nothing deleted. Deletion then runs in order and
// stops at the first failure; files already deleted stay deleted. The first
// failure is returned as a *RemovalError. The joined paths that were deleted
// are returned in both cases.
func (r *Remover) RemoveFiles(paths []string) ([]string, error) {
	if err := r.validator.ValidateBaseDir(); err != nil {
		return nil, &RemovalError{Index: -1, Path: r.baseDir, Err: fmt.Errorf("%w: base dir: %w", ErrUnsafePath, err)}
	}

	targets := make([]string, len(paths))
	for i, rel := range paths {
		target, err := r.preflight(rel)
		if err != nil {
			r.logger.Error("Pre-flight failed, nothing removed", "entry", i, "path", rel, "error", err)
			return nil, &RemovalError{Index: i, Path: target, Err: err}
		}
		targets[i] = target
	}

	removed := make([]string, 0, len(targets))
	for i, target := range targets {
		if err := r.deleter.Remove(target); err != nil {
			r.logger.Error("Failed to remove", "entry", i, "path", target, "error", err)
			return removed, &RemovalError{Index: i, Path: target, Err: classify(err)}
		}
		r.logger.Info("Removed file", "path", target)
		removed = append(removed, target)
		if r.onRemove != nil {
			r.onRemove(target)
		}
	}
	return removed, nil
}

func (r *Remover) preflight(rel string) (string, error) {
	// Joining cleans ".." away, so the raw entry is checked first
	if rel == "" || filepath.IsAbs(rel) || safety.DetectTraversal(rel) {
		return rel, fmt.Errorf("%w: %q must be relative without '..'", ErrUnsafePath, rel)
	}
	target := filepath.Join(r.baseDir, rel)
	if err := r.validator.ValidateRemoveTarget(target); err != nil {
		return target, fmt.Errorf("%w: %w", ErrUnsafePath, err)
	}

	info, err := os.Lstat(target)
	if err != nil {
		return target, classify(err)
	}
	if info.IsDir() {
		return target, ErrNotAFile
	}
	return target, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return err
	}
}

// RemoveFiles deletes every path below baseDir with the real filesystem,
// fail-fast. It is the package-level form of Remover.RemoveFiles.
func RemoveFiles(baseDir string, paths []string) error {
	_, err := New(baseDir, nil).RemoveFiles(paths)
	return err
}
