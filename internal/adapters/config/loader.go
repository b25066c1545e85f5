// Package config provides the configuration loader for cdnloader.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.trai.ch/cdnloader/internal/core/domain"
	"go.trai.ch/cdnloader/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the configuration file at path and returns the validated configuration.
func (l *Loader) Load(path string) (*domain.Config, error) {
	var cdnfile Cdnfile
	if err := l.readAndUnmarshalYAML(path, &cdnfile); err != nil {
		return nil, err
	}

	cfg := &domain.Config{
		Path:       path,
		OutputDir:  resolveOutputDir(path, cdnfile.OutputDir),
		AutoCreate: cdnfile.AutoCreate == nil || *cdnfile.AutoCreate,
		BaseURL:    cdnfile.BaseURL,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultBaseURL
	}

	if cdnfile.Timeout != "" {
		timeout, err := time.ParseDuration(cdnfile.Timeout)
		if err != nil || timeout < 0 {
			parseErr := zerr.With(zerr.New("invalid timeout"), "timeout", cdnfile.Timeout)
			return nil, errors.Join(domain.ErrConfigParseFailed, zerr.With(parseErr, "path", path))
		}
		cfg.Timeout = timeout
	}

	cfg.Libraries = make([]domain.Library, 0, len(cdnfile.Libraries))
	for i := range cdnfile.Libraries {
		lib, err := toLibrary(&cdnfile.Libraries[i])
		if err != nil {
			detail := zerr.With(zerr.New("invalid library declaration"), "library_index", i)
			return nil, errors.Join(err, zerr.With(detail, "path", path))
		}
		cfg.Libraries = append(cfg.Libraries, lib)
	}

	return cfg, nil
}

func toLibrary(dto *LibraryDTO) (domain.Library, error) {
	var opts []domain.LibraryOption

	switch {
	case dto.Minified != nil:
		opts = append(opts, domain.WithMinified(*dto.Minified))
	case dto.Min != nil:
		opts = append(opts, domain.WithMinified(*dto.Min))
	}

	if dto.Type != "" {
		opts = append(opts, domain.WithType(dto.Type))
	}

	if dto.Files != nil {
		opts = append(opts, domain.WithFiles(*dto.Files...))
	}

	return domain.NewLibrary(dto.Name, dto.Version, opts...)
}

// readAndUnmarshalYAML reads a YAML file, warns about keys it does not understand,
// and unmarshals it into the target struct.
func (l *Loader) readAndUnmarshalYAML(path string, target *Cdnfile) error {
	// #nosec G304 -- path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		readErr := zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
		if errors.Is(err, fs.ErrNotExist) {
			return errors.Join(domain.ErrConfigNotFound, readErr)
		}
		return errors.Join(domain.ErrConfigReadFailed, readErr)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return errors.Join(domain.ErrConfigParseFailed, zerr.With(zerr.Wrap(err, "invalid yaml"), "path", path))
	}
	l.warnUnknownKeys(path, raw)

	if err := yaml.Unmarshal(data, target); err != nil {
		return errors.Join(domain.ErrConfigParseFailed, zerr.With(zerr.Wrap(err, "invalid schema"), "path", path))
	}
	return nil
}

func (l *Loader) warnUnknownKeys(path string, raw map[string]any) {
	if l.Logger == nil {
		return
	}

	var unknown []string
	for key := range raw {
		if _, ok := knownKeys[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)

	for _, key := range unknown {
		l.Logger.Warn(fmt.Sprintf("'%s' defined in %s has no effect", key, filepath.Base(path)))
	}
}

// resolveOutputDir anchors a relative output directory at the config file location.
func resolveOutputDir(configPath, configured string) string {
	configDir := filepath.Dir(configPath)
	dir := domain.NormalizeDir(configured)
	if dir == "" {
		dir = domain.DefaultOutputDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Clean(filepath.Join(configDir, dir))
}
