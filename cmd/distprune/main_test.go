package main

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"distprune/internal/exitcodes"
	"distprune/internal/pipeline"
	"distprune/internal/remover"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unsafe removal", &remover.RemovalError{Index: 0, Err: fmt.Errorf("%w: outside", remover.ErrUnsafePath)}, exitcodes.SafetyViolation},
		{"unsafe prune target", fmt.Errorf("%w: Node.java", pipeline.ErrUnsafeTarget), exitcodes.SafetyViolation},
		{"missing file", &remover.RemovalError{Index: 1, Err: remover.ErrFileNotFound}, exitcodes.RemovalFailed},
		{"permission", &remover.RemovalError{Index: 2, Err: remover.ErrPermissionDenied}, exitcodes.RemovalFailed},
		{"read failure", fmt.Errorf("prune Node.java: %w", fs.ErrNotExist), exitcodes.RuntimeError},
		{"other", errors.New("boom"), exitcodes.RuntimeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, expected %d", tt.err, got, tt.want)
			}
		})
	}
}
