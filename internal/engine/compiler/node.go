package compiler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/knot/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/knot/internal/adapters/script" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/knot/internal/core/ports"
)

// NodeID is the unique identifier for the compiler Graft node.
const NodeID graft.ID = "engine.compiler"

func init() {
	graft.Register(graft.Node[ports.UnitCompiler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{script.ParserNodeID, fs.HasherNodeID},
		Run: func(ctx context.Context) (ports.UnitCompiler, error) {
			parser, err := graft.Dep[ports.Parser](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			return New(parser, hasher), nil
		},
	})
}
