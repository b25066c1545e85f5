package ports

import "io"

// TagRenderer writes HTML include tags for cached files.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type TagRenderer interface {
	// Render writes one tag per source to w, in order.
	Render(w io.Writer, sources []string) error
}
