package domain

import (
	"errors"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

const (
	// ScriptExt is the extension of linkable JavaScript files.
	ScriptExt = ".js"
	// StylesheetExt is the extension of linkable CSS files.
	StylesheetExt = ".css"
)

// LinkableExt returns the lowercased extension of name if the file can be linked
// from an HTML page. Matching is case-insensitive.
func LinkableExt(name string) (string, bool) {
	ext := strings.ToLower(path.Ext(toSlash(name)))
	switch ext {
	case ScriptExt, StylesheetExt:
		return ext, true
	default:
		return "", false
	}
}

// IsLinkable reports whether name is a JavaScript or CSS file.
func IsLinkable(name string) bool {
	_, ok := LinkableExt(name)
	return ok
}

// ResolveWithin joins a remote-derived relative name onto root.
// Separators are unified and dot segments are resolved first. Absolute names,
// names escaping root and names denoting root itself are rejected with ErrPath.
// So are names at or below a reserved root entry: the fingerprint record and
// the canonical linkable files.
func ResolveWithin(root, name string) (string, error) {
	slashed := toSlash(name)
	if strings.TrimSpace(slashed) == "" {
		return "", errors.Join(ErrPath, zerr.With(zerr.New("empty file name"), "root", root))
	}

	if path.IsAbs(slashed) || filepath.IsAbs(name) || hasDrive(slashed) {
		return "", errors.Join(ErrPath, zerr.With(zerr.New("absolute file name"), "file", name))
	}

	clean := path.Clean(slashed)
	switch {
	case clean == ".":
		return "", errors.Join(ErrPath, zerr.With(zerr.New("file name resolves to the output directory"), "file", name))
	case clean == ".." || strings.HasPrefix(clean, "../"):
		err := zerr.With(zerr.New("file name escapes the output directory"), "file", name)
		return "", errors.Join(ErrPath, zerr.With(err, "root", root))
	case isReserved(strings.SplitN(clean, "/", 2)[0]):
		return "", errors.Join(ErrPath, zerr.With(zerr.New("file name is reserved"), "file", name))
	}

	return filepath.Join(root, filepath.FromSlash(clean)), nil
}

// NormalizeDir cleans a directory path and unifies its separators for the host.
func NormalizeDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return ""
	}
	return filepath.Clean(filepath.FromSlash(toSlash(dir)))
}

// isReserved reports whether a root entry name is owned by the cache itself.
// Case is ignored so the check holds on case-insensitive filesystems.
func isReserved(entry string) bool {
	for _, reserved := range []string{
		FingerprintFileName,
		CanonicalBaseName + ScriptExt,
		CanonicalBaseName + StylesheetExt,
	} {
		if strings.EqualFold(entry, reserved) {
			return true
		}
	}
	return false
}

func toSlash(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}

func hasDrive(slashed string) bool {
	if len(slashed) < 2 || slashed[1] != ':' {
		return false
	}
	c := slashed[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
