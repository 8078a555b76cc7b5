// Package source reads a target file once, lets the caller transform it in
// memory, and writes it back once.
package source

import (
	"errors"
	"fmt"
	"os"

	"distprune/internal/prune"
)

var errClosed = errors.New("source file already released")

// File is one source file held in memory for the duration of an edit.
type File struct {
	path   string
	mode   os.FileMode
	text   prune.Text
	closed bool
}

// Open reads the whole file at path.
func Open(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &File{
		path: path,
		mode: info.Mode().Perm(),
		text: prune.ParseText(string(data)),
	}, nil
}

// Path returns the file's path.
func (f *File) Path() string {
	return f.path
}

// Text returns the current in-memory content.
func (f *File) Text() prune.Text {
	return f.text
}

// Set replaces the in-memory content.
func (f *File) Set(t prune.Text) {
	f.text = t
}

// Persist overwrites the file with the current content and releases it.
// The file must not be used afterwards.
func (f *File) Persist() error {
	if f.closed {
		return errClosed
	}
	f.closed = true
	if err := os.WriteFile(f.path, []byte(f.text.String()), f.mode); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

// Release drops the in-memory content without writing.
func (f *File) Release() {
	f.closed = true
	f.text = prune.Text{}
}

// Edit opens path, passes it to fn and persists the result exactly once.
// If fn returns an error nothing is written and the error is returned.
// The buffer is released on every path.
func Edit(path string, fn func(f *File) error) error {
	f, err := Open(path)
	if err != nil {
		return err
	}
	defer f.Release()

	if err := fn(f); err != nil {
		return err
	}
	return f.Persist()
}
