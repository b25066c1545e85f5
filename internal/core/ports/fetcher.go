package ports

import "context"

// Fetcher retrieves remote file content.
//
//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type Fetcher interface {
	// Fetch downloads the body behind url.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
