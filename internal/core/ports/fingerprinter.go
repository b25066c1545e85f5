package ports

import "go.trai.ch/cdnloader/internal/core/domain"

// Fingerprinter computes the change-detection fingerprint of a manifest.
//
//go:generate mockgen -source=fingerprinter.go -destination=mocks/mock_fingerprinter.go -package=mocks
type Fingerprinter interface {
	// Fingerprint returns a stable, order-sensitive digest of the manifest.
	Fingerprint(manifest domain.Manifest) string
}
