package domain

import "path/filepath"

const (
	// ConfigFileName is the name of the default configuration file.
	ConfigFileName = "cdnloader.yaml"

	// DefaultOutputDir is the output directory used when the configuration omits one.
	DefaultOutputDir = "cdn"

	// DefaultBaseURL is the root of the cdnjs library tree.
	DefaultBaseURL = "https://cdnjs.cloudflare.com/ajax/libs"

	// FingerprintFileName is the name of the fingerprint record at the output directory root.
	FingerprintFileName = "hash"

	// CanonicalBaseName is the shared base name of the concatenated linkable files.
	CanonicalBaseName = "cdn-libraries"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// FingerprintPath returns the location of the fingerprint record inside outputDir.
func FingerprintPath(outputDir string) string {
	return filepath.Join(outputDir, FingerprintFileName)
}

// CanonicalPath returns the concatenation target for linkable files with the given extension.
// The extension is expected in lowercase with its leading dot, e.g. ".js".
func CanonicalPath(outputDir, ext string) string {
	return filepath.Join(outputDir, CanonicalBaseName+ext)
}
