package materializer_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cdnloader/internal/adapters/fs"
	"go.trai.ch/cdnloader/internal/adapters/telemetry/progrock"
	"go.trai.ch/cdnloader/internal/core/domain"
	"go.trai.ch/cdnloader/internal/core/ports"
	"go.trai.ch/cdnloader/internal/core/ports/mocks"
	"go.trai.ch/cdnloader/internal/engine/materializer"
	"go.uber.org/mock/gomock"
)

const (
	outDir = "/srv/cdn"
	base   = "https://cdn.test/libs"
)

var (
	canonicalJS  = filepath.Join(outDir, "cdn-libraries.js")
	canonicalCSS = filepath.Join(outDir, "cdn-libraries.css")
	hashPath     = filepath.Join(outDir, "hash")
)

type harness struct {
	fs      *fs.MemFS
	fetcher *mocks.MockFetcher
	logger  *mocks.MockLogger
	manager *materializer.Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	memfs := fs.NewMemFS()
	return newHarnessWith(t, memfs, memfs)
}

func newHarnessWith(t *testing.T, memfs *fs.MemFS, filesystem ports.FileSystem) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	fetcher := mocks.NewMockFetcher(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	vertex := mocks.NewMockVertex(ctrl)
	vertex.EXPECT().Stdout().Return(io.Discard).AnyTimes()
	vertex.EXPECT().Complete(gomock.Any()).AnyTimes()
	vertex.EXPECT().Cached().AnyTimes()

	telemetry := mocks.NewMockTelemetry(ctrl)
	telemetry.EXPECT().Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
			return ctx, vertex
		}).AnyTimes()

	return &harness{
		fs:      memfs,
		fetcher: fetcher,
		logger:  logger,
		manager: materializer.New(filesystem, fetcher, fs.NewHasher(), logger, telemetry),
	}
}

func (h *harness) configure(t *testing.T, libs ...domain.Library) {
	t.Helper()
	require.NoError(t, h.manager.Configure(outDir, libs, materializer.WithBaseURL(base)))
}

func (h *harness) expectFetch(url, body string) *gomock.Call {
	return h.fetcher.EXPECT().Fetch(gomock.Any(), url).Return([]byte(body), nil)
}

func (h *harness) read(t *testing.T, path string) string {
	t.Helper()
	data, err := h.fs.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func lib(t *testing.T, name, version string, opts ...domain.LibraryOption) domain.Library {
	t.Helper()
	l, err := domain.NewLibrary(name, version, opts...)
	require.NoError(t, err)
	return l
}

func fingerprint(t *testing.T, libs ...domain.Library) string {
	t.Helper()
	m, err := domain.NewManifest(base, libs)
	require.NoError(t, err)
	return fs.NewHasher().Fingerprint(m)
}

func TestConfigure(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		h := newHarness(t)
		h.configure(t)

		isDir, err := h.fs.IsDir(outDir)
		require.NoError(t, err)
		assert.True(t, isDir)
		assert.Equal(t, outDir, h.manager.OutputDir())
	})

	t.Run("normalizes directory", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.manager.Configure("/srv/./static/../cdn/", nil))
		assert.Equal(t, outDir, h.manager.OutputDir())
	})

	t.Run("resolves manifest with base url", func(t *testing.T) {
		h := newHarness(t)
		h.configure(t, lib(t, "jquery", "3.7.1", domain.WithMinified(true)))

		assert.Equal(t, []domain.ResolvedURL{
			{URL: base + "/jquery/3.7.1/jquery.min.js", File: "jquery.min.js"},
		}, h.manager.Manifest().Entries())
	})

	t.Run("default base url", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.manager.Configure(outDir, []domain.Library{lib(t, "foo", "1.0.0")}))
		assert.Equal(t, domain.DefaultBaseURL+"/foo/1.0.0/foo.js", h.manager.Manifest().Entries()[0].URL)
	})

	tests := []struct {
		name     string
		setup    func(t *testing.T, memfs *fs.MemFS)
		dir      string
		libs     []domain.Library
		opts     []materializer.Option
		sentinel error
	}{
		{
			name:     "empty output dir",
			dir:      "  ",
			sentinel: domain.ErrConfiguration,
		},
		{
			name:     "auto create disabled",
			dir:      outDir,
			opts:     []materializer.Option{materializer.WithAutoCreate(false)},
			sentinel: domain.ErrDirectory,
		},
		{
			name: "output path is a file",
			setup: func(t *testing.T, memfs *fs.MemFS) {
				require.NoError(t, memfs.MkdirAll("/srv"))
				require.NoError(t, memfs.WriteFile(outDir, []byte("x"), false))
			},
			dir:      outDir,
			sentinel: domain.ErrDirectory,
		},
		{
			name: "parent is a file",
			setup: func(t *testing.T, memfs *fs.MemFS) {
				require.NoError(t, memfs.WriteFile("/srv", []byte("x"), false))
			},
			dir:      outDir,
			sentinel: domain.ErrDirectory,
		},
		{
			name:     "unbuilt library",
			dir:      outDir,
			libs:     []domain.Library{{}},
			sentinel: domain.ErrConfiguration,
		},
		{
			name:     "empty base url",
			dir:      outDir,
			libs:     []domain.Library{lib(t, "foo", "1.0.0")},
			opts:     []materializer.Option{materializer.WithBaseURL("")},
			sentinel: domain.ErrConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if tt.setup != nil {
				tt.setup(t, h.fs)
			}

			err := h.manager.Configure(tt.dir, tt.libs, tt.opts...)
			require.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestMaterialize_NotConfigured(t *testing.T) {
	h := newHarness(t)

	require.ErrorIs(t, h.manager.Materialize(context.Background()), domain.ErrNotConfigured)
	assert.NotNil(t, h.manager.CachedFiles())
	assert.Empty(t, h.manager.CachedFiles())

	_, err := h.manager.Status()
	require.ErrorIs(t, err, domain.ErrNotConfigured)
	require.ErrorIs(t, h.manager.Purge(), domain.ErrNotConfigured)
}

func TestMaterialize_ColdCache(t *testing.T) {
	h := newHarness(t)
	libs := []domain.Library{
		lib(t, "jquery", "3.7.1", domain.WithMinified(true)),
		lib(t, "normalize", "8.0.1", domain.WithType("css")),
		lib(t, "bootstrap", "5.3.2", domain.WithFiles(
			"css/bootstrap.min.css",
			"js/bootstrap.bundle.min.js",
			"fonts/icons.woff2",
		)),
	}
	h.configure(t, libs...)

	gomock.InOrder(
		h.expectFetch(base+"/jquery/3.7.1/jquery.min.js", "jq"),
		h.expectFetch(base+"/normalize/8.0.1/normalize.css", "norm"),
		h.expectFetch(base+"/bootstrap/5.3.2/css/bootstrap.min.css", "bs-css"),
		h.expectFetch(base+"/bootstrap/5.3.2/js/bootstrap.bundle.min.js", "bs-js"),
		h.expectFetch(base+"/bootstrap/5.3.2/fonts/icons.woff2", "font"),
	)

	require.NoError(t, h.manager.Materialize(context.Background()))

	assert.Equal(t, []string{canonicalJS, canonicalCSS}, h.manager.CachedFiles())
	assert.Equal(t, "jq\nbs-js\n", h.read(t, canonicalJS))
	assert.Equal(t, "norm\nbs-css\n", h.read(t, canonicalCSS))
	assert.Equal(t, "font\n", h.read(t, filepath.Join(outDir, "fonts", "icons.woff2")))
	assert.Equal(t, fingerprint(t, libs...), h.read(t, hashPath))
}

func TestMaterialize_Idempotent(t *testing.T) {
	h := newHarness(t)
	h.configure(t,
		lib(t, "foo", "1.0.0"),
		lib(t, "bar", "2.0.0", domain.WithType("css")),
	)
	h.expectFetch(base+"/foo/1.0.0/foo.js", "foo").Times(1)
	h.expectFetch(base+"/bar/2.0.0/bar.css", "bar").Times(1)

	require.NoError(t, h.manager.Materialize(context.Background()))
	first := h.manager.CachedFiles()

	require.NoError(t, h.manager.Materialize(context.Background()))
	assert.Equal(t, first, h.manager.CachedFiles())
	assert.Equal(t, "foo\n", h.read(t, canonicalJS))
}

func TestMaterialize_FastPathOrder(t *testing.T) {
	h := newHarness(t)
	h.configure(t,
		lib(t, "foo", "1.0.0"),
		lib(t, "bar", "2.0.0", domain.WithType("css")),
	)
	h.expectFetch(base+"/foo/1.0.0/foo.js", "foo")
	h.expectFetch(base+"/bar/2.0.0/bar.css", "bar")

	require.NoError(t, h.manager.Materialize(context.Background()))
	require.Equal(t, []string{canonicalJS, canonicalCSS}, h.manager.CachedFiles())

	require.NoError(t, h.fs.WriteFile(filepath.Join(outDir, "a.js"), []byte("a"), false))
	require.NoError(t, h.fs.WriteFile(filepath.Join(outDir, "Z.CSS"), []byte("z"), false))
	require.NoError(t, h.fs.WriteFile(filepath.Join(outDir, "notes.txt"), []byte("n"), false))
	require.NoError(t, h.fs.MkdirAll(filepath.Join(outDir, "vendor.js")))

	require.NoError(t, h.manager.Materialize(context.Background()))
	assert.Equal(t, []string{
		canonicalJS,
		canonicalCSS,
		filepath.Join(outDir, "Z.CSS"),
		filepath.Join(outDir, "a.js"),
	}, h.manager.CachedFiles())
}

func TestMaterialize_ConfigChange(t *testing.T) {
	h := newHarness(t)
	h.configure(t, lib(t, "foo", "1.0.0"), lib(t, "foo", "1.0.0", domain.WithFiles("maps/foo.map")))
	h.expectFetch(base+"/foo/1.0.0/foo.js", "v1")
	h.expectFetch(base+"/foo/1.0.0/maps/foo.map", "map")
	require.NoError(t, h.manager.Materialize(context.Background()))

	h.configure(t, lib(t, "foo", "1.1.0", domain.WithType("css")))
	assert.Empty(t, h.manager.CachedFiles())

	h.expectFetch(base+"/foo/1.1.0/foo.css", "v2")
	require.NoError(t, h.manager.Materialize(context.Background()))

	assert.Equal(t, []string{canonicalCSS}, h.manager.CachedFiles())
	names, err := h.fs.List(outDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"cdn-libraries.css", "hash"}, names)
}

func TestMaterialize_ReorderRebuilds(t *testing.T) {
	h := newHarness(t)
	a := lib(t, "a", "1.0.0")
	b := lib(t, "b", "1.0.0")

	h.configure(t, a, b)
	gomock.InOrder(
		h.expectFetch(base+"/a/1.0.0/a.js", "A"),
		h.expectFetch(base+"/b/1.0.0/b.js", "B"),
	)
	require.NoError(t, h.manager.Materialize(context.Background()))
	require.Equal(t, "A\nB\n", h.read(t, canonicalJS))

	h.configure(t, b, a)
	gomock.InOrder(
		h.expectFetch(base+"/b/1.0.0/b.js", "B"),
		h.expectFetch(base+"/a/1.0.0/a.js", "A"),
	)
	require.NoError(t, h.manager.Materialize(context.Background()))

	assert.Equal(t, "B\nA\n", h.read(t, canonicalJS))
	assert.Equal(t, fingerprint(t, b, a), h.read(t, hashPath))
	assert.NotEqual(t, fingerprint(t, a, b), fingerprint(t, b, a))
}

func TestMaterialize_DeduplicatesCachedFiles(t *testing.T) {
	h := newHarness(t)
	h.configure(t, lib(t, "multi", "1.0.0", domain.WithFiles("a.js", "b.JS", "c.js")))
	h.expectFetch(base+"/multi/1.0.0/a.js", "a")
	h.expectFetch(base+"/multi/1.0.0/b.JS", "b")
	h.expectFetch(base+"/multi/1.0.0/c.js", "c")

	require.NoError(t, h.manager.Materialize(context.Background()))
	assert.Equal(t, []string{canonicalJS}, h.manager.CachedFiles())
	assert.Equal(t, "a\nb\nc\n", h.read(t, canonicalJS))
}

func TestMaterialize_EmptyManifest(t *testing.T) {
	h := newHarness(t)
	h.configure(t, lib(t, "nothing", "1.0.0", domain.WithFiles()))

	require.NoError(t, h.manager.Materialize(context.Background()))
	assert.Empty(t, h.manager.CachedFiles())
	assert.Equal(t, fingerprint(t), h.read(t, hashPath))
}

func TestMaterialize_UnsafePath(t *testing.T) {
	tests := [][]string{
		{"../escape.txt"},
		{"a/../../escape.txt"},
		{"hash"},
		{"/etc/passwd"},
		{"hash/x.txt"},
		{"cdn-libraries.js/map.txt"},
		{"CDN-LIBRARIES.CSS/font.woff2"},
		{"docs/readme.txt", "docs/readme.txt/extra.txt"},
		{"img/logo/big.png", "img/logo"},
	}

	for _, files := range tests {
		t.Run(strings.Join(files, ","), func(t *testing.T) {
			h := newHarness(t)
			h.configure(t)
			keep := filepath.Join(outDir, "keep.txt")
			require.NoError(t, h.fs.WriteFile(keep, []byte("keep"), false))

			h.configure(t, lib(t, "evil", "1.0.0", domain.WithFiles(files...)))

			err := h.manager.Materialize(context.Background())
			require.ErrorIs(t, err, domain.ErrPath)
			assert.Equal(t, "keep", h.read(t, keep))

			exists, err := h.fs.Exists(hashPath)
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestMaterialize_FetchFailure(t *testing.T) {
	h := newHarness(t)
	h.configure(t,
		lib(t, "foo", "1.0.0"),
		lib(t, "missing", "9.9.9"),
	)

	missingURL := base + "/missing/9.9.9/missing.js"
	gomock.InOrder(
		h.expectFetch(base+"/foo/1.0.0/foo.js", "foo"),
		h.fetcher.EXPECT().Fetch(gomock.Any(), missingURL).Return(nil, domain.ErrFetchFailed),
	)

	err := h.manager.Materialize(context.Background())
	require.ErrorIs(t, err, domain.ErrLibraryNotFound)
	assert.Contains(t, err.Error(), missingURL)

	assert.Equal(t, []string{canonicalJS}, h.manager.CachedFiles())
	assert.Equal(t, "foo\n", h.read(t, canonicalJS), "partially written files stay")

	exists, err := h.fs.Exists(hashPath)
	require.NoError(t, err)
	assert.False(t, exists, "fingerprint is removed after a failed rebuild")

	status, err := h.manager.Status()
	require.NoError(t, err)
	assert.Equal(t, materializer.StateStale, status.State)

	gomock.InOrder(
		h.expectFetch(base+"/foo/1.0.0/foo.js", "foo"),
		h.expectFetch(missingURL, "found"),
	)
	require.NoError(t, h.manager.Materialize(context.Background()))
	assert.Equal(t, "foo\nfound\n", h.read(t, canonicalJS))
}

type failingFS struct {
	*fs.MemFS
	failPath string
}

func (f *failingFS) WriteFile(path string, data []byte, appendMode bool) error {
	if path == f.failPath {
		return os.ErrPermission
	}
	return f.MemFS.WriteFile(path, data, appendMode)
}

func TestMaterialize_WriteFailure(t *testing.T) {
	t.Run("cached file", func(t *testing.T) {
		memfs := fs.NewMemFS()
		h := newHarnessWith(t, memfs, &failingFS{MemFS: memfs, failPath: canonicalJS})
		h.configure(t, lib(t, "foo", "1.0.0"))
		h.expectFetch(base+"/foo/1.0.0/foo.js", "foo")

		err := h.manager.Materialize(context.Background())
		require.ErrorIs(t, err, domain.ErrFileProcess)
		assert.NotErrorIs(t, err, domain.ErrLibraryNotFound)
		assert.Empty(t, h.manager.CachedFiles())

		exists, err := memfs.Exists(hashPath)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("fingerprint", func(t *testing.T) {
		memfs := fs.NewMemFS()
		h := newHarnessWith(t, memfs, &failingFS{MemFS: memfs, failPath: hashPath})
		h.configure(t, lib(t, "foo", "1.0.0"))

		err := h.manager.Materialize(context.Background())
		require.ErrorIs(t, err, domain.ErrFileProcess)
	})
}

func TestMaterialize_CanceledBeforePurge(t *testing.T) {
	h := newHarness(t)
	h.configure(t, lib(t, "foo", "1.0.0"))
	stale := filepath.Join(outDir, "old.js")
	require.NoError(t, h.fs.WriteFile(stale, []byte("old"), false))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.manager.Materialize(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "old", h.read(t, stale))
	assert.Empty(t, h.manager.CachedFiles())
}

func TestMaterialize_CancelDuringRebuild(t *testing.T) {
	h := newHarness(t)
	h.configure(t, lib(t, "foo", "1.0.0"), lib(t, "bar", "1.0.0"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gomock.InOrder(
		h.fetcher.EXPECT().Fetch(gomock.Any(), base+"/foo/1.0.0/foo.js").
			DoAndReturn(func(_ context.Context, _ string) ([]byte, error) {
				cancel()
				return []byte("foo"), nil
			}),
		h.fetcher.EXPECT().Fetch(gomock.Any(), base+"/bar/1.0.0/bar.js").
			DoAndReturn(func(ctx context.Context, _ string) ([]byte, error) {
				require.NoError(t, ctx.Err())
				return []byte("bar"), nil
			}),
	)

	require.NoError(t, h.manager.Materialize(ctx))
	assert.Equal(t, "foo\nbar\n", h.read(t, canonicalJS))
}

func TestMaterialize_FetchTimeout(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.manager.Configure(outDir, []domain.Library{lib(t, "slow", "1.0.0")},
			materializer.WithBaseURL(base),
			materializer.WithFetchTimeout(5*time.Second),
		))

		h.fetcher.EXPECT().Fetch(gomock.Any(), base+"/slow/1.0.0/slow.js").
			DoAndReturn(func(ctx context.Context, _ string) ([]byte, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})

		start := time.Now()
		err := h.manager.Materialize(context.Background())
		require.ErrorIs(t, err, domain.ErrLibraryNotFound)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 5*time.Second, time.Since(start))
	})
}

func TestStatus(t *testing.T) {
	h := newHarness(t)
	libs := []domain.Library{
		lib(t, "foo", "1.0.0"),
		lib(t, "foo", "1.0.0", domain.WithFiles("foo.map", "extra.js")),
	}
	h.configure(t, libs...)

	status, err := h.manager.Status()
	require.NoError(t, err)
	assert.Equal(t, materializer.StateStale, status.State)
	assert.Equal(t, fingerprint(t, libs...), status.Current)
	assert.Empty(t, status.Persisted)
	assert.Equal(t, []string{canonicalJS, filepath.Join(outDir, "foo.map")}, status.Missing)

	h.expectFetch(base+"/foo/1.0.0/foo.js", "foo")
	h.expectFetch(base+"/foo/1.0.0/foo.map", "map")
	h.expectFetch(base+"/foo/1.0.0/extra.js", "extra")
	require.NoError(t, h.manager.Materialize(context.Background()))

	status, err = h.manager.Status()
	require.NoError(t, err)
	assert.Equal(t, materializer.StateFresh, status.State)
	assert.Equal(t, status.Current, status.Persisted)
	assert.Empty(t, status.Missing)

	require.NoError(t, h.fs.Remove(filepath.Join(outDir, "foo.map")))

	status, err = h.manager.Status()
	require.NoError(t, err)
	assert.Equal(t, materializer.StateFresh, status.State)
	assert.Equal(t, []string{filepath.Join(outDir, "foo.map")}, status.Missing)
}

func TestPurge(t *testing.T) {
	h := newHarness(t)
	h.configure(t, lib(t, "foo", "1.0.0", domain.WithFiles("foo.js", "deep/nested/file.txt")))
	h.expectFetch(base+"/foo/1.0.0/foo.js", "foo").Times(2)
	h.expectFetch(base+"/foo/1.0.0/deep/nested/file.txt", "txt").Times(2)
	require.NoError(t, h.manager.Materialize(context.Background()))

	require.NoError(t, h.manager.Purge())

	names, err := h.fs.List(outDir)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Empty(t, h.manager.CachedFiles())

	status, err := h.manager.Status()
	require.NoError(t, err)
	assert.Equal(t, materializer.StateStale, status.State)

	require.NoError(t, h.manager.Materialize(context.Background()))
	assert.Equal(t, "txt\n", h.read(t, filepath.Join(outDir, "deep", "nested", "file.txt")))
}

func TestMaterialize_Disk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "www", "cdn")
	ctrl := gomock.NewController(t)

	fetcher := mocks.NewMockFetcher(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()

	telemetry := progrock.New()
	t.Cleanup(func() { _ = telemetry.Close() })

	manager := materializer.New(fs.NewOSFS(), fetcher, fs.NewHasher(), logger, telemetry)
	require.NoError(t, manager.Configure(dir, []domain.Library{
		lib(t, "foo", "1.0.0", domain.WithFiles("foo.js", "img/logo.svg")),
	}, materializer.WithBaseURL(base)))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.css"), []byte("old"), domain.FilePerm))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "old", "tree"), domain.DirPerm))

	fetcher.EXPECT().Fetch(gomock.Any(), base+"/foo/1.0.0/foo.js").Return([]byte("foo"), nil)
	fetcher.EXPECT().Fetch(gomock.Any(), base+"/foo/1.0.0/img/logo.svg").Return([]byte("<svg/>"), nil)

	require.NoError(t, manager.Materialize(context.Background()))
	require.NoError(t, manager.Materialize(context.Background()))

	assert.Equal(t, []string{filepath.Join(dir, "cdn-libraries.js")}, manager.CachedFiles())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"cdn-libraries.js", "hash", "img"}, names)

	logo, err := os.ReadFile(filepath.Join(dir, "img", "logo.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>\n", string(logo))

	_, err = os.Stat(filepath.Join(dir, "stale.css"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
