package html

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cdnloader/internal/core/ports"
)

// NodeID is the unique identifier for the tag renderer Graft node.
const NodeID graft.ID = "adapter.tag_renderer"

func init() {
	graft.Register(graft.Node[ports.TagRenderer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.TagRenderer, error) {
			return NewRenderer(), nil
		},
	})
}
