// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/cdnloader/internal/adapters/cdn"
	_ "go.trai.ch/cdnloader/internal/adapters/config"
	_ "go.trai.ch/cdnloader/internal/adapters/fs"
	_ "go.trai.ch/cdnloader/internal/adapters/html"
	_ "go.trai.ch/cdnloader/internal/adapters/logger"
	_ "go.trai.ch/cdnloader/internal/adapters/telemetry/progrock"
	// Register app nodes.
	_ "go.trai.ch/cdnloader/internal/app"
)
