// Package app implements the application layer for cdnloader.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"go.trai.ch/cdnloader/internal/core/domain"
	"go.trai.ch/cdnloader/internal/core/ports"
	"go.trai.ch/cdnloader/internal/engine/materializer"
	"go.trai.ch/cdnloader/internal/ui/output"
	"go.trai.ch/cdnloader/internal/ui/style"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader  ports.ConfigLoader
	fs            ports.FileSystem
	fetcher       ports.Fetcher
	fingerprinter ports.Fingerprinter
	logger        ports.Logger
	telemetry     ports.Telemetry
	renderer      ports.TagRenderer
	parallelism   int
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	fs ports.FileSystem,
	fetcher ports.Fetcher,
	fingerprinter ports.Fingerprinter,
	log ports.Logger,
	telemetry ports.Telemetry,
	renderer ports.TagRenderer,
) *App {
	return &App{
		configLoader:  loader,
		fs:            fs,
		fetcher:       fetcher,
		fingerprinter: fingerprinter,
		logger:        log,
		telemetry:     telemetry,
		renderer:      renderer,
		parallelism:   runtime.NumCPU(),
	}
}

// WithParallelism limits how many configurations are materialized at once.
func (a *App) WithParallelism(n int) *App {
	if n > 0 {
		a.parallelism = n
	}
	return a
}

// SetJSONLogs switches the logger to JSON output when it supports it.
func (a *App) SetJSONLogs(enabled bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(enabled)
	}
}

// SetProgress streams finished units of work to w when the telemetry supports it.
func (a *App) SetProgress(w io.Writer) {
	if t, ok := a.telemetry.(interface{ Stream(io.Writer) }); ok {
		t.Stream(w)
	}
}

// FetchOptions configuration for the Fetch method.
type FetchOptions struct {
	ConfigPaths []string
}

// Result is the outcome of materializing one configuration.
type Result struct {
	ConfigPath string
	OutputDir  string
	Files      []string
}

// Fetch materializes every configuration and returns their linkable files.
// Configurations run concurrently; each owns a distinct output directory.
func (a *App) Fetch(ctx context.Context, opts FetchOptions) ([]Result, error) {
	configs, err := a.loadAll(opts.ConfigPaths)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(configs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallelism)

	for i, cfg := range configs {
		g.Go(func() error {
			m, err := a.manager(cfg, true)
			if err != nil {
				return err
			}
			if err := m.Materialize(ctx); err != nil {
				return zerr.Wrap(err, "failed to materialize "+cfg.Path)
			}
			results[i] = Result{
				ConfigPath: cfg.Path,
				OutputDir:  m.OutputDir(),
				Files:      m.CachedFiles(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// TagsOptions configuration for the Tags method.
type TagsOptions struct {
	ConfigPaths []string
	// BasePath is prepended to every href, e.g. "/static".
	BasePath string
	// WebRoot is the directory hrefs are made relative to.
	WebRoot string
}

// Tags materializes the configurations and writes HTML include tags for their files.
func (a *App) Tags(ctx context.Context, w io.Writer, opts TagsOptions) error {
	results, err := a.Fetch(ctx, FetchOptions{ConfigPaths: opts.ConfigPaths})
	if err != nil {
		return err
	}

	var hrefs []string
	for _, res := range results {
		for _, file := range res.Files {
			href, err := buildHref(file, opts.BasePath, opts.WebRoot)
			if err != nil {
				return err
			}
			hrefs = append(hrefs, href)
		}
	}

	return a.renderer.Render(w, hrefs)
}

func buildHref(file, basePath, webRoot string) (string, error) {
	rel := file
	if webRoot != "" {
		absRoot, err := filepath.Abs(webRoot)
		if err != nil {
			return "", zerr.Wrap(err, "failed to resolve web root")
		}
		absFile, err := filepath.Abs(file)
		if err != nil {
			return "", zerr.Wrap(err, "failed to resolve cached file")
		}
		rel, err = filepath.Rel(absRoot, absFile)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", errors.Join(domain.ErrPath,
				zerr.With(zerr.With(zerr.New("cached file is outside the web root"), "file", file), "web_root", webRoot))
		}
	}

	rel = filepath.ToSlash(rel)
	if basePath == "" {
		return rel, nil
	}
	return strings.TrimRight(basePath, "/") + "/" + strings.TrimLeft(rel, "/"), nil
}

// StatusOptions configuration for the Status method.
type StatusOptions struct {
	ConfigPaths []string
}

// Status reports the cache state of every configuration without changing anything.
func (a *App) Status(_ context.Context, w io.Writer, opts StatusOptions) error {
	configs, err := a.loadAll(opts.ConfigPaths)
	if err != nil {
		return err
	}

	out := output.New(w)
	for _, cfg := range configs {
		isDir, err := a.fs.IsDir(cfg.OutputDir)
		if err != nil {
			return errors.Join(domain.ErrDirectory, zerr.With(zerr.Wrap(err, "failed to inspect output directory"), "path", cfg.OutputDir))
		}
		if !isDir {
			_, _ = fmt.Fprintf(w, "%s %s %s\n",
				output.Paint(out, style.Warning, style.Yellow), cfg.OutputDir, output.Paint(out, "not created", style.Slate))
			continue
		}

		m, err := a.manager(cfg, false)
		if err != nil {
			return err
		}
		status, err := m.Status()
		if err != nil {
			return err
		}

		icon, color := style.Check, style.Green
		if status.State == materializer.StateStale {
			icon, color = style.Warning, style.Yellow
		}
		_, _ = fmt.Fprintf(w, "%s %s %s\n",
			output.Paint(out, icon, color), m.OutputDir(), output.Paint(out, string(status.State), color))
		_, _ = fmt.Fprintf(w, "  fingerprint %s\n", status.Current)
		if status.Persisted != "" && status.Persisted != status.Current {
			_, _ = fmt.Fprintf(w, "  persisted   %s\n", status.Persisted)
		}
		for _, path := range status.Missing {
			_, _ = fmt.Fprintf(w, "  %s missing %s\n", output.Paint(out, style.Cross, style.Red), path)
		}
	}
	return nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	ConfigPaths []string
}

// Clean purges the output directory of every configuration.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	configs, err := a.loadAll(opts.ConfigPaths)
	if err != nil {
		return err
	}

	var errs error
	for _, cfg := range configs {
		isDir, err := a.fs.IsDir(cfg.OutputDir)
		if err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, "failed to inspect "+cfg.OutputDir))
			continue
		}
		if !isDir {
			a.logger.Info(fmt.Sprintf("nothing to clean in %s", cfg.OutputDir))
			continue
		}

		m, err := a.manager(cfg, false)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if err := m.Purge(); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, "failed to clean "+cfg.OutputDir))
		}
	}
	return errs
}

// loadAll loads every configuration and rejects output directories used more than once.
func (a *App) loadAll(paths []string) ([]*domain.Config, error) {
	if len(paths) == 0 {
		return nil, domain.ErrNoConfigSpecified
	}

	configs := make([]*domain.Config, 0, len(paths))
	owners := make(map[string]string, len(paths))
	for _, path := range paths {
		cfg, err := a.configLoader.Load(path)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to load configuration")
		}

		dir := domain.NormalizeDir(cfg.OutputDir)
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		if first, ok := owners[dir]; ok {
			err := zerr.With(zerr.New("output directory "+dir+" is used by "+first+" and "+cfg.Path), "output_dir", dir)
			return nil, errors.Join(domain.ErrDuplicateOutputDir, err)
		}
		owners[dir] = cfg.Path
		configs = append(configs, cfg)
	}
	return configs, nil
}

func (a *App) manager(cfg *domain.Config, autoCreate bool) (*materializer.Manager, error) {
	m := materializer.New(a.fs, a.fetcher, a.fingerprinter, a.logger, a.telemetry)
	err := m.Configure(cfg.OutputDir, cfg.Libraries,
		materializer.WithAutoCreate(autoCreate && cfg.AutoCreate),
		materializer.WithBaseURL(cfg.BaseURL),
		materializer.WithFetchTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to configure cache for "+cfg.Path)
	}
	return m, nil
}
