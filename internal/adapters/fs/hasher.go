package fs

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/cdnloader/internal/core/domain"
	"go.trai.ch/cdnloader/internal/core/ports"
)

var _ ports.Fingerprinter = (*Hasher)(nil)

// Hasher computes manifest fingerprints with XXHash.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Fingerprint hashes the manifest entries in order.
// Each field is terminated by a zero byte so that ("ab", "c") and ("a", "bc") differ.
func (h *Hasher) Fingerprint(manifest domain.Manifest) string {
	hasher := xxhash.New()

	entries := manifest.Entries()
	for _, entry := range entries {
		_, _ = hasher.WriteString(entry.URL)
		_, _ = hasher.Write([]byte{0}) // Separator
		_, _ = hasher.WriteString(entry.File)
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0}) // Section separator

	_, _ = hasher.WriteString(strconv.Itoa(len(entries)))

	return fmt.Sprintf("%016x", hasher.Sum64())
}
