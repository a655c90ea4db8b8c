package unitstore

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/knot/internal/adapters/fs"
	"go.trai.ch/knot/internal/adapters/logger"
	"go.trai.ch/knot/internal/adapters/script"
	"go.trai.ch/knot/internal/core/ports"
)

// LoaderNodeID is the unique identifier for the source loader Graft node.
const LoaderNodeID graft.ID = "adapter.unit_loader"

func init() {
	graft.Register(graft.Node[ports.SourceLoader]{
		ID:        LoaderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.WalkerNodeID, script.ExtractorNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.SourceLoader, error) {
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			extractor, err := graft.Dep[ports.ReferenceExtractor](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(walker, extractor, log), nil
		},
	})
}
