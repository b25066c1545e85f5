package domain

import (
	"errors"
	"slices"
	"strings"
	"unicode"

	"go.trai.ch/zerr"
)

const (
	defaultExtension = ".js"
	minifiedSuffix   = ".min"
)

// Library is an immutable declaration of a CDN library and the files to pull from it.
type Library struct {
	name     string
	version  string
	files    []string
	explicit bool
	minified bool
	kind     string
}

// LibraryOption configures a Library during construction.
type LibraryOption func(*Library)

// WithFiles sets an explicit, ordered list of files relative to the library version root.
// An empty list is kept as is and resolves to no URLs.
func WithFiles(files ...string) LibraryOption {
	return func(l *Library) {
		l.files = slices.Clone(files)
		if l.files == nil {
			l.files = []string{}
		}
		l.explicit = true
	}
}

// WithMinified requests the minified variant when the file list is derived.
func WithMinified(minified bool) LibraryOption {
	return func(l *Library) {
		l.minified = minified
	}
}

// WithType sets the file type used when the file list is derived, e.g. "css".
func WithType(kind string) LibraryOption {
	return func(l *Library) {
		l.kind = kind
	}
}

// NewLibrary validates and builds a library declaration.
// When no explicit files are given, a single file is derived from the name, the
// minified flag, and the type (defaulting to JavaScript).
func NewLibrary(name, version string, opts ...LibraryOption) (Library, error) {
	l := Library{
		name:    strings.TrimSpace(name),
		version: strings.TrimSpace(version),
	}
	for _, opt := range opts {
		opt(&l)
	}

	if err := l.validate(); err != nil {
		return Library{}, err
	}

	if !l.explicit {
		l.files = []string{l.derivedFile()}
	}

	return l, nil
}

func (l *Library) validate() error {
	switch {
	case l.name == "":
		return errors.Join(ErrConfiguration, ErrMissingLibraryName)
	case l.version == "":
		return errors.Join(ErrConfiguration, zerr.With(ErrMissingLibraryVersion, "library", l.name))
	case !isSegment(l.name):
		return errors.Join(ErrConfiguration, zerr.With(ErrInvalidLibraryName, "library", l.name))
	case !isSegment(l.version):
		return errors.Join(ErrConfiguration, zerr.With(ErrInvalidLibraryVersion, "version", l.version))
	}

	for i, file := range l.files {
		if strings.TrimSpace(file) == "" {
			err := zerr.With(ErrEmptyFileName, "library", l.name)
			return errors.Join(ErrConfiguration, zerr.With(err, "file_index", i))
		}
	}
	return nil
}

func (l *Library) derivedFile() string {
	ext := defaultExtension
	if kind := strings.ToLower(strings.TrimSpace(l.kind)); kind != "" {
		ext = "." + strings.TrimPrefix(kind, ".")
	}
	if l.minified {
		return l.name + minifiedSuffix + ext
	}
	return l.name + ext
}

// isSegment reports whether s can be used as a single URL path segment.
func isSegment(s string) bool {
	return !strings.ContainsFunc(s, func(r rune) bool {
		return r == '/' || r == '\\' || unicode.IsSpace(r)
	})
}

// Name returns the library name.
func (l Library) Name() string { return l.name }

// Version returns the library version.
func (l Library) Version() string { return l.version }

// Files returns a copy of the resolved file list.
func (l Library) Files() []string { return slices.Clone(l.files) }

// Minified reports whether the minified variant was requested.
func (l Library) Minified() bool { return l.minified }

// Type returns the declared file type, if any.
func (l Library) Type() string { return l.kind }
