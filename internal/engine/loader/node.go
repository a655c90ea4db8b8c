package loader

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/knot/internal/adapters/cas"                //nolint:depguard // Wired in engine wiring
	"go.trai.ch/knot/internal/adapters/fs"                 //nolint:depguard // Wired in engine wiring
	"go.trai.ch/knot/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/knot/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/knot/internal/core/ports"
	"go.trai.ch/knot/internal/engine/compiler"
)

// NodeID is the unique identifier for the registry factory Graft node.
const NodeID graft.ID = "engine.loader"

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			compiler.NodeID,
			fs.HasherNodeID,
			cas.NodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Factory, error) {
			unitCompiler, err := graft.Dep[ports.UnitCompiler](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			artifacts, err := graft.Dep[ports.ArtifactStore](ctx)
			if err != nil {
				return nil, err
			}

			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewFactory(unitCompiler, hasher, artifacts, tel, log), nil
		},
	})
}
