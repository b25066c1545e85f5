package materializer

import (
	"time"

	"go.trai.ch/cdnloader/internal/core/domain"
)

type settings struct {
	autoCreate bool
	baseURL    string
	timeout    time.Duration
}

func defaultSettings() settings {
	return settings{
		autoCreate: true,
		baseURL:    domain.DefaultBaseURL,
	}
}

// Option configures a Manager during Configure.
type Option func(*settings)

// WithAutoCreate controls whether a missing output directory is created.
func WithAutoCreate(enabled bool) Option {
	return func(s *settings) {
		s.autoCreate = enabled
	}
}

// WithBaseURL overrides the remote root libraries are fetched from.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		s.baseURL = baseURL
	}
}

// WithFetchTimeout bounds every single fetch. Zero leaves the transport default in place.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}
