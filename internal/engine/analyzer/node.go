package analyzer

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/fingerprint"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/core/ports"
)

// NodeID is the unique identifier for the analyzer Graft node.
const NodeID graft.ID = "engine.analyzer"

func init() {
	graft.Register(graft.Node[*Analyzer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fingerprint.NodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Analyzer, error) {
			fingerprinter, err := graft.Dep[ports.Fingerprinter](ctx)
			if err != nil {
				return nil, err
			}

			telemetry, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewAnalyzer(fingerprinter, telemetry, log), nil
		},
	})
}
