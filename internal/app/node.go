package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cdnloader/internal/adapters/cdn"                //nolint:depguard // Wired in app layer
	"go.trai.ch/cdnloader/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/cdnloader/internal/adapters/fs"                 //nolint:depguard // Wired in app layer
	"go.trai.ch/cdnloader/internal/adapters/html"               //nolint:depguard // Wired in app layer
	"go.trai.ch/cdnloader/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/cdnloader/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/cdnloader/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.FileSystemNodeID,
			cdn.NodeID,
			fs.HasherNodeID,
			logger.NodeID,
			progrock.NodeID,
			html.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	filesystem, err := graft.Dep[ports.FileSystem](ctx)
	if err != nil {
		return nil, err
	}

	fetcher, err := graft.Dep[ports.Fetcher](ctx)
	if err != nil {
		return nil, err
	}

	fingerprinter, err := graft.Dep[ports.Fingerprinter](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	renderer, err := graft.Dep[ports.TagRenderer](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, filesystem, fetcher, fingerprinter, log, telemetry, renderer), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       app,
		Logger:    log,
		Telemetry: telemetry,
	}, nil
}
