package materializer

import (
	"errors"
	"fmt"

	"go.trai.ch/cdnloader/internal/core/domain"
	"go.trai.ch/zerr"
)

// State describes whether the output directory matches the configuration.
type State string

const (
	// StateFresh means the persisted fingerprint matches the configuration.
	StateFresh State = "fresh"
	// StateStale means the next Materialize rebuilds the directory.
	StateStale State = "stale"
)

// Status is a read-only report on the output directory.
type Status struct {
	State State
	// Current is the fingerprint of the configured manifest.
	Current string
	// Persisted is the fingerprint found on disk, empty when there is none.
	Persisted string
	// Missing lists expected local files that are absent.
	Missing []string
}

// Status inspects the output directory without writing to it or contacting the remote.
func (m *Manager) Status() (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.configured {
		return Status{}, domain.ErrNotConfigured
	}

	current := m.fingerprinter.Fingerprint(m.manifest)
	persisted, found, err := m.readFingerprint()
	if err != nil {
		return Status{}, err
	}

	placements, err := m.placements()
	if err != nil {
		return Status{}, err
	}

	missing := []string{}
	seen := make(map[string]struct{}, len(placements))
	for _, p := range placements {
		if _, ok := seen[p.path]; ok {
			continue
		}
		seen[p.path] = struct{}{}
		exists, err := m.fs.Exists(p.path)
		if err != nil {
			return Status{}, errors.Join(domain.ErrFileProcess, zerr.With(zerr.Wrap(err, "failed to inspect cached file"), "path", p.path))
		}
		if !exists {
			missing = append(missing, p.path)
		}
	}

	state := StateStale
	if found && persisted == current {
		state = StateFresh
	}

	return Status{
		State:     state,
		Current:   current,
		Persisted: persisted,
		Missing:   missing,
	}, nil
}

// Purge removes the cached files and the fingerprint, leaving an empty output directory.
func (m *Manager) Purge() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.configured {
		return domain.ErrNotConfigured
	}

	if err := m.purge(m.outputDir); err != nil {
		return err
	}
	m.files = []string{}
	m.logger.Info(fmt.Sprintf("purged %s", m.outputDir))
	return nil
}
