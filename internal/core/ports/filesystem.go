package ports

// FileSystem abstracts the file operations the cache needs on its output directory.
//
//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// ReadFile returns the content of the file at path.
	// A missing file yields an error matching fs.ErrNotExist.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to path, creating the file if needed.
	// When appendMode is set the data is appended instead of replacing the content.
	WriteFile(path string, data []byte, appendMode bool) error

	// MkdirAll creates path and any missing parents.
	MkdirAll(path string) error

	// Remove deletes a file or an empty directory.
	Remove(path string) error

	// List returns the names of the immediate entries of dir in lexical order.
	List(dir string) ([]string, error)

	// IsDir reports whether path exists and is a directory.
	IsDir(path string) (bool, error)

	// Exists reports whether anything exists at path.
	Exists(path string) (bool, error)
}
