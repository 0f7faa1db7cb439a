package graph

import (
	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"
)

// Assemble combines both derivation steps into the render-ready graph. Nodes
// are taken in the order relationship types, root and related entities,
// context scopes; edges in the order relationship types, related/context
// links, context -> relationship type. Duplicates by node id or by (from, to)
// pair are dropped, keeping the first occurrence.
func Assemble(relTypes RelationshipTypeResult, related RelatedEntityResult) *common.Graph {
	nodes := NewNodeSet()
	nodes.AddAll(relTypes.Nodes)
	nodes.AddAll(related.RelatedNodes)
	nodes.AddAll(related.ContextNodes)

	edges := NewEdgeSet()
	edges.AddAll(relTypes.Edges)
	edges.AddAll(related.RelatedEdges)
	edges.AddAll(related.ContextEdges)

	return &common.Graph{
		Nodes:   nodes.Items(),
		Edges:   edges.Items(),
		Options: common.DefaultRenderOptions(),
	}
}
