package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/adapters/state"              //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/adapters/watcher"            //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/engine/analyzer"
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
			analyzer.NodeID,
			logger.NodeID,
			progrock.NodeID,
			state.NodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(a, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	a, err := graft.Dep[*analyzer.Analyzer](ctx)
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

	store, err := graft.Dep[ports.StateStore](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, a, log, telemetry, store, w), nil
}
