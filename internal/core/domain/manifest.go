package domain

import (
	"errors"
	"slices"
	"strings"
)

// ResolvedURL pairs a remote location with the file name it was derived from.
type ResolvedURL struct {
	// URL is the fully-qualified remote location.
	URL string
	// File is the file name relative to the library version root, possibly nested.
	File string
}

// Resolve derives the ordered list of remote URLs for the library below baseURL.
// URLs have the form {base}/{name}/{version}/{file}.
func (l Library) Resolve(baseURL string) ([]ResolvedURL, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.Join(ErrConfiguration, ErrMissingBaseURL)
	}

	urls := make([]ResolvedURL, 0, len(l.files))
	for _, file := range l.files {
		urls = append(urls, ResolvedURL{
			URL:  base + "/" + l.name + "/" + l.version + "/" + file,
			File: file,
		})
	}
	return urls, nil
}

// Manifest is the ordered set of URLs derived from a configuration.
type Manifest struct {
	entries []ResolvedURL
}

// NewManifest resolves all libraries in declaration order.
func NewManifest(baseURL string, libraries []Library) (Manifest, error) {
	var entries []ResolvedURL
	for _, lib := range libraries {
		urls, err := lib.Resolve(baseURL)
		if err != nil {
			return Manifest{}, err
		}
		entries = append(entries, urls...)
	}
	return Manifest{entries: entries}, nil
}

// Entries returns a copy of the manifest entries.
func (m Manifest) Entries() []ResolvedURL {
	return slices.Clone(m.entries)
}

// Len returns the number of entries.
func (m Manifest) Len() int {
	return len(m.entries)
}
