// Package cdn implements the Fetcher port over HTTP.
package cdn

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go.trai.ch/cdnloader/internal/build"
	"go.trai.ch/cdnloader/internal/core/domain"
	"go.trai.ch/cdnloader/internal/core/ports"
	"go.trai.ch/zerr"
)

const httpClientTimeout = 30 * time.Second

var _ ports.Fetcher = (*Fetcher)(nil)

// Fetcher downloads library files with plain HTTP GET requests.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a Fetcher with a 30 second client timeout.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: httpClientTimeout,
		},
		userAgent: "cdnloader/" + build.Version,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the body behind url.
// A 404 answer yields domain.ErrLibraryNotFound; any other failure yields domain.ErrFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, errors.Join(domain.ErrFetchFailed, zerr.With(zerr.Wrap(err, "failed to build request"), "url", url))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(domain.ErrFetchFailed, zerr.With(zerr.Wrap(err, "request failed"), "url", url))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		notFoundErr := zerr.With(zerr.New("remote file does not exist"), "url", url)
		return nil, errors.Join(domain.ErrLibraryNotFound, zerr.With(notFoundErr, "status_code", resp.StatusCode))
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := zerr.With(zerr.New("unexpected status"), "status_code", resp.StatusCode)
		return nil, errors.Join(domain.ErrFetchFailed, zerr.With(apiErr, "url", url))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(domain.ErrFetchFailed, zerr.With(zerr.Wrap(err, "failed to read body"), "url", url))
	}
	return body, nil
}
