package domain

import "go.trai.ch/zerr"

var (
	// ErrConfiguration is returned when a library declaration or cache configuration is malformed.
	ErrConfiguration = zerr.New("invalid configuration")

	// ErrDirectory is returned when the output directory cannot be created, listed, or purged.
	ErrDirectory = zerr.New("output directory unavailable")

	// ErrPath is returned when a derived local path is unsafe or escapes the output directory.
	ErrPath = zerr.New("unsafe path")

	// ErrLibraryNotFound is returned when a remote library file cannot be fetched.
	ErrLibraryNotFound = zerr.New("library not found")

	// ErrFileProcess is returned when a local file cannot be read or written.
	ErrFileProcess = zerr.New("failed to process file")

	// ErrMissingLibraryName is returned when a library declaration has no name.
	ErrMissingLibraryName = zerr.New("missing library name")

	// ErrMissingLibraryVersion is returned when a library declaration has no version.
	ErrMissingLibraryVersion = zerr.New("missing library version")

	// ErrInvalidLibraryName is returned when a library name contains path separators or whitespace.
	ErrInvalidLibraryName = zerr.New("library name must not contain path separators or whitespace")

	// ErrInvalidLibraryVersion is returned when a library version contains path separators or whitespace.
	ErrInvalidLibraryVersion = zerr.New("library version must not contain path separators or whitespace")

	// ErrEmptyFileName is returned when an explicit file entry of a library is empty.
	ErrEmptyFileName = zerr.New("library file name is empty")

	// ErrMissingBaseURL is returned when URLs are resolved without a remote root.
	ErrMissingBaseURL = zerr.New("missing base url")

	// ErrMissingOutputDir is returned when the cache is configured without an output directory.
	ErrMissingOutputDir = zerr.New("missing output directory")

	// ErrNotConfigured is returned when the cache is used before it was configured.
	ErrNotConfigured = zerr.New("cache manager is not configured")

	// ErrFetchFailed is returned when the remote answers with an unexpected status or the transport fails.
	ErrFetchFailed = zerr.New("failed to fetch remote file")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when the config file does not exist.
	ErrConfigNotFound = zerr.New("config file not found")

	// ErrUnsupportedType is returned when a source cannot be rendered as an HTML tag.
	ErrUnsupportedType = zerr.New("unsupported source type")

	// ErrInvalidSource is returned when an empty source is passed to the renderer.
	ErrInvalidSource = zerr.New("invalid source")

	// ErrDuplicateOutputDir is returned when two configurations share one output directory.
	ErrDuplicateOutputDir = zerr.New("output directory is shared by multiple configurations")

	// ErrNoConfigSpecified is returned when a command runs without any configuration file.
	ErrNoConfigSpecified = zerr.New("no configuration file specified")
)
