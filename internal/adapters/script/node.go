package script

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/knot/internal/core/ports"
)

const (
	// ParserNodeID is the unique identifier for the unit parser Graft node.
	ParserNodeID graft.ID = "adapter.parser"
	// ExtractorNodeID is the unique identifier for the reference extractor Graft node.
	ExtractorNodeID graft.ID = "adapter.reference_extractor"
)

func init() {
	graft.Register(graft.Node[ports.Parser]{
		ID:        ParserNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Parser, error) {
			return NewParser(), nil
		},
	})

	graft.Register(graft.Node[ports.ReferenceExtractor]{
		ID:        ExtractorNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ReferenceExtractor, error) {
			return NewParser(), nil
		},
	})
}
