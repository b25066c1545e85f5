package fs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cdnloader/internal/adapters/fs"
	"go.trai.ch/cdnloader/internal/core/domain"
)

func manifest(t *testing.T, libs ...domain.Library) domain.Manifest {
	t.Helper()
	m, err := domain.NewManifest("https://cdn.example.com/libs", libs)
	require.NoError(t, err)
	return m
}

func library(t *testing.T, name string, opts ...domain.LibraryOption) domain.Library {
	t.Helper()
	lib, err := domain.NewLibrary(name, "1.0.0", opts...)
	require.NoError(t, err)
	return lib
}

func TestHasher_Fingerprint(t *testing.T) {
	h := fs.NewHasher()

	t.Run("deterministic", func(t *testing.T) {
		m := manifest(t, library(t, "foo"), library(t, "bar", domain.WithType("css")))
		assert.Equal(t, h.Fingerprint(m), h.Fingerprint(m))
		assert.Len(t, h.Fingerprint(m), 16)
	})

	t.Run("order sensitive", func(t *testing.T) {
		a := manifest(t, library(t, "foo"), library(t, "bar"))
		b := manifest(t, library(t, "bar"), library(t, "foo"))
		assert.NotEqual(t, h.Fingerprint(a), h.Fingerprint(b))
	})

	t.Run("field boundaries", func(t *testing.T) {
		a := manifest(t, library(t, "foo", domain.WithFiles("ab", "c")))
		b := manifest(t, library(t, "foo", domain.WithFiles("a", "bc")))
		assert.NotEqual(t, h.Fingerprint(a), h.Fingerprint(b))
	})

	t.Run("changes with configuration", func(t *testing.T) {
		a := manifest(t, library(t, "foo"))
		b := manifest(t, library(t, "foo", domain.WithMinified(true)))
		assert.NotEqual(t, h.Fingerprint(a), h.Fingerprint(b))
	})

	t.Run("empty manifest", func(t *testing.T) {
		empty := manifest(t)
		assert.Equal(t, h.Fingerprint(empty), h.Fingerprint(domain.Manifest{}))
		assert.Equal(t, h.Fingerprint(empty), h.Fingerprint(manifest(t, library(t, "foo", domain.WithFiles()))),
			"libraries without files resolve to the same empty manifest")
	})
}
