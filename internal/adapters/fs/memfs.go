package fs

import (
	"errors"
	iofs "io/fs"
	"path/filepath"
	"slices"
	"sync"

	"go.trai.ch/cdnloader/internal/core/ports"
)

var _ ports.FileSystem = (*MemFS)(nil)

var errNotEmpty = errors.New("directory not empty")

// MemFS is an in-memory ports.FileSystem.
// It follows the semantics of OSFS closely enough to stand in for it in tests and dry runs.
// Paths are cleaned before use; "." and "/" always exist as directories.
type MemFS struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]struct{}
}

// NewMemFS creates an empty MemFS.
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string][]byte),
		dirs:  make(map[string]struct{}),
	}
}

// ReadFile returns a copy of the file content at path.
func (m *MemFS) ReadFile(path string) ([]byte, error) {
	path = filepath.Clean(path)

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[path]
	if !ok {
		if m.isDirLocked(path) {
			return nil, &iofs.PathError{Op: "read", Path: path, Err: errors.New("is a directory")}
		}
		return nil, &iofs.PathError{Op: "open", Path: path, Err: iofs.ErrNotExist}
	}
	return slices.Clone(data), nil
}

// WriteFile writes or appends data to path. The parent directory must exist.
func (m *MemFS) WriteFile(path string, data []byte, appendMode bool) error {
	path = filepath.Clean(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isDirLocked(path) {
		return &iofs.PathError{Op: "open", Path: path, Err: errors.New("is a directory")}
	}
	if !m.isDirLocked(filepath.Dir(path)) {
		return &iofs.PathError{Op: "open", Path: path, Err: iofs.ErrNotExist}
	}

	if appendMode {
		m.files[path] = append(m.files[path], data...)
		return nil
	}
	m.files[path] = slices.Clone(data)
	return nil
}

// MkdirAll creates path and its parents.
func (m *MemFS) MkdirAll(path string) error {
	path = filepath.Clean(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	for dir := path; !isRoot(dir); dir = filepath.Dir(dir) {
		if _, ok := m.files[dir]; ok {
			return &iofs.PathError{Op: "mkdir", Path: dir, Err: iofs.ErrExist}
		}
	}
	for dir := path; !isRoot(dir); dir = filepath.Dir(dir) {
		m.dirs[dir] = struct{}{}
	}
	return nil
}

// Remove deletes a file or an empty directory.
func (m *MemFS) Remove(path string) error {
	path = filepath.Clean(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[path]; ok {
		delete(m.files, path)
		return nil
	}
	if _, ok := m.dirs[path]; !ok {
		return &iofs.PathError{Op: "remove", Path: path, Err: iofs.ErrNotExist}
	}
	if len(m.childrenLocked(path)) > 0 {
		return &iofs.PathError{Op: "remove", Path: path, Err: errNotEmpty}
	}
	delete(m.dirs, path)
	return nil
}

// List returns the entry names of dir in lexical order.
func (m *MemFS) List(dir string) ([]string, error) {
	dir = filepath.Clean(dir)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.isDirLocked(dir) {
		return nil, &iofs.PathError{Op: "open", Path: dir, Err: iofs.ErrNotExist}
	}
	return m.childrenLocked(dir), nil
}

// IsDir reports whether path is a directory.
func (m *MemFS) IsDir(path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isDirLocked(filepath.Clean(path)), nil
}

// Exists reports whether a file or directory exists at path.
func (m *MemFS) Exists(path string) (bool, error) {
	path = filepath.Clean(path)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.files[path]; ok {
		return true, nil
	}
	return m.isDirLocked(path), nil
}

func (m *MemFS) isDirLocked(path string) bool {
	if isRoot(path) {
		return true
	}
	_, ok := m.dirs[path]
	return ok
}

func (m *MemFS) childrenLocked(dir string) []string {
	var names []string
	for path := range m.files {
		if filepath.Dir(path) == dir {
			names = append(names, filepath.Base(path))
		}
	}
	for path := range m.dirs {
		if filepath.Dir(path) == dir {
			names = append(names, filepath.Base(path))
		}
	}
	slices.Sort(names)
	return names
}

func isRoot(path string) bool {
	return path == "." || path == string(filepath.Separator) || filepath.Dir(path) == path
}
