// Package hostsio is the thin read-text / write-text collaborator around the
// system host file.
package hostsio

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultPerm os.FileMode = 0o644

// File reads and writes one host file path.
type File struct {
	path   string
	atomic bool
}

type Options struct {
	Path string
	// Atomic writes to a temporary file in the same directory and renames it
	// over Path. Without it the file is truncated and written in place.
	Atomic bool
}

func New(opts Options) *File {
	return &File{path: opts.Path, atomic: opts.Atomic}
}

// Path returns the file this collaborator operates on.
func (f *File) Path() string { return f.path }

// ReadText returns the whole file as a string. Failures wrap domain.ErrFileUnavailable.
func (f *File) ReadText() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fileUnavailable(f.path, err)
	}
	return string(data), nil
}

// WriteText replaces the file content. Failures wrap domain.ErrWriteFailure.
// The existing permission bits are kept.
func (f *File) WriteText(content string) error {
	perm := defaultPerm
	if info, err := os.Stat(f.path); err == nil {
		perm = info.Mode().Perm()
	}

	var err error
	if f.atomic {
		err = writeAtomic(f.path, []byte(content), perm)
	} else {
		err = os.WriteFile(f.path, []byte(content), perm)
	}
	if err != nil {
		return writeFailure(f.path, err)
	}
	return nil
}

func writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".focus-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
