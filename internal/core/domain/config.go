package domain

import "time"

// Config is a loaded cache configuration.
type Config struct {
	// Path is the file the configuration was loaded from.
	Path string
	// OutputDir is the cache directory, already resolved against the config file location.
	OutputDir string
	// AutoCreate creates OutputDir when it does not exist.
	AutoCreate bool
	// BaseURL is the remote root libraries are fetched from.
	BaseURL string
	// Timeout bounds a single fetch. Zero uses the transport default.
	Timeout time.Duration
	// Libraries are the declarations in configuration order.
	Libraries []Library
}
