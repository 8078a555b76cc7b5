package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrProtectedPath = errors.New("protected path")
	ErrOutsideBase   = errors.New("outside base directory")
	ErrTraversal     = errors.New("path traversal detected")
	ErrSymlinkEscape = errors.New("symlink escape detected")
)

// Validator confines every removal to files strictly below one base directory
type Validator struct {
	BaseDir        string
	ProtectedPaths []string
}

// NewValidator creates a validator rooted at baseDir with optional additional protected paths
func NewValidator(baseDir string, extraProtected []string) *Validator {
	base, err := NormalizePath(baseDir)
	if err != nil {
		base = ""
	}
	return &Validator{
		BaseDir:        base,
		ProtectedPaths: defaultProtected(extraProtected),
	}
}

// ValidateBaseDir checks that the base directory itself is usable
func (v *Validator) ValidateBaseDir() error {
	if v.BaseDir == "" {
		return ErrInvalidPath
	}
	if IsProtectedPath(v.BaseDir, v.ProtectedPaths) {
		return ErrProtectedPath
	}
	return nil
}

// ValidateRemoveTarget is the single-source-of-truth for removal authorization.
// path is the joined base+relative path as it will be handed to the deleter.
func (v *Validator) ValidateRemoveTarget(path string) error {
	// 1. Detect path traversal in raw input
	if DetectTraversal(path) {
		return ErrTraversal
	}

	// 2. Normalize path to absolute, cleaned form
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}

	// 3. Block protected paths (system-critical)
	if IsProtectedPath(p, v.ProtectedPaths) {
		return ErrProtectedPath
	}

	// 4. Ensure strictly below the base directory
	if v.BaseDir == "" || p == v.BaseDir || !hasPathPrefix(p, v.BaseDir) {
		return ErrOutsideBase
	}

	// 5. Detect a symlinked parent directory leading out of the base
	escaped, err := DetectSymlinkEscape(filepath.Dir(p), v.BaseDir)
	if err != nil {
		// A missing parent means the file is missing too; the removal reports that
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if escaped {
		return ErrSymlinkEscape
	}

	return nil
}

// NormalizePath converts path to absolute, cleaned form
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	return filepath.Clean(abs), nil
}

// DetectTraversal blocks any ".." segment in raw input
func DetectTraversal(raw string) bool {
	parts := strings.Split(filepath.ToSlash(raw), "/")
	for _, p := range parts {
		if p == ".." {
			return true
		}
	}
	return false
}

// DetectSymlinkEscape resolves symlinks in dir and checks the result stays under root.
// root is resolved as well so a symlinked base directory is not an escape.
func DetectSymlinkEscape(dir, root string) (bool, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return false, err
	}
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return false, err
	}
	resolved = filepath.Clean(resolved)
	resolvedRoot = filepath.Clean(resolvedRoot)
	return !hasPathPrefix(resolved, resolvedRoot), nil
}

// IsProtectedPath checks if path matches protected system paths
func IsProtectedPath(path string, protected []string) bool {
	p := filepath.Clean(path)

	// Hard block: "/" exact
	if p == string(os.PathSeparator) {
		return true
	}

	for _, prot := range protected {
		prot = filepath.Clean(prot)
		if p == prot || hasPathPrefix(p, prot) {
			return true
		}
	}
	return false
}

// hasPathPrefix checks if path has the given prefix.
// A "/" prefix only matches "/" itself so that protecting the root does not
// protect everything.
func hasPathPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)

	if prefix == string(os.PathSeparator) {
		return path == prefix
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+string(os.PathSeparator))
}

// defaultProtected returns the base set of protected paths plus any extras
func defaultProtected(extra []string) []string {
	base := []string{
		"/",
		"/etc",
		"/bin",
		"/sbin",
		"/boot",
		"/lib",
		"/lib64",
		"/usr/bin",
		"/usr/sbin",
		"/usr/lib",
	}
	return append(base, extra...)
}
