// Package materializer keeps a local directory in sync with a set of CDN libraries.
package materializer

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/cdnloader/internal/core/domain"
	"go.trai.ch/cdnloader/internal/core/ports"
	"go.trai.ch/zerr"
)

// Manager owns one output directory and the libraries cached inside it.
type Manager struct {
	fs            ports.FileSystem
	fetcher       ports.Fetcher
	fingerprinter ports.Fingerprinter
	logger        ports.Logger
	telemetry     ports.Telemetry

	mu         sync.Mutex
	configured bool
	outputDir  string
	manifest   domain.Manifest
	settings   settings
	files      []string
}

// placement is the local destination of one manifest entry.
type placement struct {
	entry    domain.ResolvedURL
	path     string
	linkable bool
}

// New creates an unconfigured Manager.
func New(
	fs ports.FileSystem,
	fetcher ports.Fetcher,
	fingerprinter ports.Fingerprinter,
	logger ports.Logger,
	telemetry ports.Telemetry,
) *Manager {
	return &Manager{
		fs:            fs,
		fetcher:       fetcher,
		fingerprinter: fingerprinter,
		logger:        logger,
		telemetry:     telemetry,
		files:         []string{},
	}
}

// Configure binds the manager to outputDir and the given libraries.
// The directory is created when missing unless auto-creation is disabled.
// Reconfiguring replaces the manifest and clears the cached file list.
func (m *Manager) Configure(outputDir string, libraries []domain.Library, opts ...Option) error {
	dir := domain.NormalizeDir(outputDir)
	if dir == "" {
		return errors.Join(domain.ErrConfiguration, domain.ErrMissingOutputDir)
	}

	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	manifest, err := domain.NewManifest(s.baseURL, libraries)
	if err != nil {
		return err
	}

	if err := m.ensureDir(dir, s.autoCreate); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.configured = true
	m.outputDir = dir
	m.manifest = manifest
	m.settings = s
	m.files = []string{}
	return nil
}

func (m *Manager) ensureDir(dir string, autoCreate bool) error {
	isDir, err := m.fs.IsDir(dir)
	if err != nil {
		return errors.Join(domain.ErrDirectory, zerr.With(zerr.Wrap(err, "failed to inspect output directory"), "path", dir))
	}
	if isDir {
		return nil
	}

	exists, err := m.fs.Exists(dir)
	if err != nil {
		return errors.Join(domain.ErrDirectory, zerr.With(zerr.Wrap(err, "failed to inspect output directory"), "path", dir))
	}
	if exists {
		return errors.Join(domain.ErrDirectory, zerr.With(zerr.New("output path is not a directory"), "path", dir))
	}
	if !autoCreate {
		return errors.Join(domain.ErrDirectory, zerr.With(zerr.New("output directory does not exist"), "path", dir))
	}

	if err := m.fs.MkdirAll(dir); err != nil {
		return errors.Join(domain.ErrDirectory, zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", dir))
	}
	return nil
}

// OutputDir returns the normalized output directory.
func (m *Manager) OutputDir() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outputDir
}

// Manifest returns the resolved URLs of the current configuration.
func (m *Manager) Manifest() domain.Manifest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.manifest
}

// CachedFiles returns the linkable files produced by the last Materialize.
func (m *Manager) CachedFiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.files)
}

// Materialize brings the output directory in line with the configured libraries.
// A directory whose fingerprint matches is reused without network access.
// Otherwise its contents are purged and every file is fetched again.
func (m *Manager) Materialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.configured {
		return domain.ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, vertex := m.telemetry.Record(ctx, "materialize "+m.outputDir)
	err := m.materialize(ctx, vertex)
	vertex.Complete(err)
	return err
}

func (m *Manager) materialize(ctx context.Context, vertex ports.Vertex) error {
	current := m.fingerprinter.Fingerprint(m.manifest)

	persisted, found, err := m.readFingerprint()
	if err != nil {
		return err
	}

	if found && persisted == current {
		files, err := m.scan()
		if err != nil {
			return err
		}
		m.files = files
		vertex.Cached()
		m.logger.Info(fmt.Sprintf("cache %s is fresh", m.outputDir))
		return nil
	}

	placements, err := m.placements()
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	// The rebuild must reach a consistent end state once files start disappearing.
	ctx = context.WithoutCancel(ctx)

	m.logger.Info(fmt.Sprintf("cache %s is stale, fetching %d files", m.outputDir, len(placements)))
	m.files = []string{}

	if err := m.purge(m.outputDir); err != nil {
		return err
	}

	fingerprintPath := domain.FingerprintPath(m.outputDir)
	if err := m.fs.WriteFile(fingerprintPath, []byte(current), false); err != nil {
		m.invalidate()
		return errors.Join(domain.ErrFileProcess, zerr.With(zerr.Wrap(err, "failed to write fingerprint"), "path", fingerprintPath))
	}

	for _, p := range placements {
		if err := m.place(ctx, p); err != nil {
			m.invalidate()
			return err
		}
	}
	return nil
}

func (m *Manager) place(ctx context.Context, p placement) error {
	ctx, vertex := m.telemetry.Record(ctx, "fetch "+p.entry.URL)
	err := m.store(ctx, vertex, p)
	vertex.Complete(err)
	return err
}

func (m *Manager) store(ctx context.Context, vertex ports.Vertex, p placement) error {
	body, err := m.fetch(ctx, p.entry.URL)
	if err != nil {
		return err
	}
	data := append(body, '\n')

	if parent := filepath.Dir(p.path); !p.linkable && parent != m.outputDir {
		if err := m.fs.MkdirAll(parent); err != nil {
			return errors.Join(domain.ErrFileProcess, zerr.With(zerr.Wrap(err, "failed to create directory"), "path", parent))
		}
	}

	if err := m.fs.WriteFile(p.path, data, true); err != nil {
		return errors.Join(domain.ErrFileProcess, zerr.With(zerr.Wrap(err, "failed to write file"), "path", p.path))
	}

	if p.linkable && !slices.Contains(m.files, p.path) {
		m.files = append(m.files, p.path)
	}

	_, _ = fmt.Fprintf(vertex.Stdout(), "%d bytes -> %s\n", len(data), p.path)
	m.logger.Info("fetched " + p.entry.URL)
	return nil
}

func (m *Manager) fetch(ctx context.Context, url string) ([]byte, error) {
	if m.settings.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.settings.timeout)
		defer cancel()
	}

	body, err := m.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, errors.Join(domain.ErrLibraryNotFound, zerr.With(zerr.Wrap(err, "failed to fetch "+url), "url", url))
	}
	return body, nil
}

// placements maps every manifest entry to its local path.
// Linkable files share one canonical file per extension; others keep their relative path.
func (m *Manager) placements() ([]placement, error) {
	entries := m.manifest.Entries()
	out := make([]placement, 0, len(entries))
	for _, entry := range entries {
		if ext, ok := domain.LinkableExt(entry.File); ok {
			out = append(out, placement{entry: entry, path: domain.CanonicalPath(m.outputDir, ext), linkable: true})
			continue
		}

		path, err := domain.ResolveWithin(m.outputDir, entry.File)
		if err != nil {
			return nil, err
		}
		if err := conflicts(out, path); err != nil {
			return nil, err
		}
		out = append(out, placement{entry: entry, path: path})
	}
	return out, nil
}

// conflicts rejects path when it must be both a file and a directory alongside placed.
func conflicts(placed []placement, path string) error {
	for _, p := range placed {
		if p.linkable {
			continue
		}
		if strings.HasPrefix(path, p.path+string(filepath.Separator)) || strings.HasPrefix(p.path, path+string(filepath.Separator)) {
			err := zerr.With(zerr.New("file name collides with a directory of another file"), "path", path)
			return errors.Join(domain.ErrPath, zerr.With(err, "other", p.path))
		}
	}
	return nil
}

// predicted returns the canonical files the manifest produces, in placement order.
func (m *Manager) predicted() []string {
	var paths []string
	for _, entry := range m.manifest.Entries() {
		ext, ok := domain.LinkableExt(entry.File)
		if !ok {
			continue
		}
		if path := domain.CanonicalPath(m.outputDir, ext); !slices.Contains(paths, path) {
			paths = append(paths, path)
		}
	}
	return paths
}

// scan lists the linkable regular files at the output directory root.
func (m *Manager) scan() ([]string, error) {
	names, err := m.fs.List(m.outputDir)
	if err != nil {
		return nil, errors.Join(domain.ErrDirectory, zerr.With(zerr.Wrap(err, "failed to list output directory"), "path", m.outputDir))
	}

	var present []string
	for _, name := range names {
		if !domain.IsLinkable(name) {
			continue
		}
		path := filepath.Join(m.outputDir, name)
		isDir, err := m.fs.IsDir(path)
		if err != nil {
			return nil, errors.Join(domain.ErrDirectory, zerr.With(zerr.Wrap(err, "failed to inspect cached file"), "path", path))
		}
		if !isDir {
			present = append(present, path)
		}
	}

	files := []string{}
	for _, path := range m.predicted() {
		if slices.Contains(present, path) {
			files = append(files, path)
		}
	}
	for _, path := range present {
		if !slices.Contains(files, path) {
			files = append(files, path)
		}
	}
	return files, nil
}

func (m *Manager) readFingerprint() (string, bool, error) {
	path := domain.FingerprintPath(m.outputDir)
	data, err := m.fs.ReadFile(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Join(domain.ErrFileProcess, zerr.With(zerr.Wrap(err, "failed to read fingerprint"), "path", path))
	}
	return strings.TrimSpace(string(data)), true, nil
}

// invalidate drops the fingerprint so the next Materialize rebuilds.
func (m *Manager) invalidate() {
	path := domain.FingerprintPath(m.outputDir)
	if err := m.fs.Remove(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		m.logger.Warn(fmt.Sprintf("failed to remove fingerprint %s: %v", path, err))
	}
}

// purge removes everything below dir, keeping dir itself.
func (m *Manager) purge(dir string) error {
	names, err := m.fs.List(dir)
	if err != nil {
		return errors.Join(domain.ErrDirectory, zerr.With(zerr.Wrap(err, "failed to list directory"), "path", dir))
	}

	for _, name := range names {
		path := filepath.Join(dir, name)
		removeErr := m.fs.Remove(path)
		if removeErr == nil {
			continue
		}

		isDir, err := m.fs.IsDir(path)
		if err != nil || !isDir {
			return errors.Join(domain.ErrDirectory, zerr.With(zerr.Wrap(removeErr, "failed to remove"), "path", path))
		}
		if err := m.purge(path); err != nil {
			return err
		}
		if err := m.fs.Remove(path); err != nil {
			return errors.Join(domain.ErrDirectory, zerr.With(zerr.Wrap(err, "failed to remove directory"), "path", path))
		}
	}
	return nil
}
