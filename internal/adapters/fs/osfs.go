// Package fs provides the file system and fingerprinting adapters.
package fs

import (
	"errors"
	iofs "io/fs"
	"os"

	"go.trai.ch/cdnloader/internal/core/domain"
	"go.trai.ch/cdnloader/internal/core/ports"
)

var _ ports.FileSystem = (*OSFS)(nil)

// OSFS implements ports.FileSystem on the local disk.
// Errors are returned as produced by package os so callers can match fs.ErrNotExist.
type OSFS struct{}

// NewOSFS creates a new OSFS.
func NewOSFS() *OSFS {
	return &OSFS{}
}

// ReadFile reads the file at path.
func (f *OSFS) ReadFile(path string) ([]byte, error) {
	//nolint:gosec // Path is derived from the configured output directory
	return os.ReadFile(path)
}

// WriteFile writes or appends data to path.
func (f *OSFS) WriteFile(path string, data []byte, appendMode bool) error {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	//nolint:gosec // Path is derived from the configured output directory
	file, err := os.OpenFile(path, flags, domain.FilePerm)
	if err != nil {
		return err
	}

	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// MkdirAll creates path and its parents.
func (f *OSFS) MkdirAll(path string) error {
	return os.MkdirAll(path, domain.DirPerm)
}

// Remove deletes a file, a symlink, or an empty directory.
func (f *OSFS) Remove(path string) error {
	return os.Remove(path)
}

// List returns the entry names of dir in lexical order.
func (f *OSFS) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// IsDir reports whether path is a directory. A missing path is not an error.
func (f *OSFS) IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// Exists reports whether anything, including a dangling symlink, exists at path.
func (f *OSFS) Exists(path string) (bool, error) {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
