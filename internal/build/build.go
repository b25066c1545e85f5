// Package build holds build-time information.
package build

// These values default to development placeholders and are overwritten with linker flags:
//
//	-ldflags "-X go.trai.ch/cdnloader/internal/build.Version=v1.0.0"
var (
	// Version is the application version.
	Version = "dev"
	// Commit is the VCS revision the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
