package graph

import (
	"context"
	"fmt"

	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"
)

// RelatedEntityResult holds everything derived from the entity snapshot.
// ContextEdges keeps one context -> relationship-type edge per type name per
// scope, repeats included; they collapse during assembly.
type RelatedEntityResult struct {
	RelatedNodes []common.GraphNode
	RelatedEdges []common.GraphEdge
	ContextNodes []common.GraphNode
	ContextEdges []common.GraphEdge
}

func emptyRelatedEntityResult() RelatedEntityResult {
	return RelatedEntityResult{
		RelatedNodes: []common.GraphNode{},
		RelatedEdges: []common.GraphEdge{},
		ContextNodes: []common.GraphNode{},
		ContextEdges: []common.GraphEdge{},
	}
}

// IsEmpty reports whether the snapshot contributed nothing, e.g. because the
// fetch did not succeed.
func (r RelatedEntityResult) IsEmpty() bool {
	return len(r.RelatedNodes) == 0 &&
		len(r.RelatedEdges) == 0 &&
		len(r.ContextNodes) == 0 &&
		len(r.ContextEdges) == 0
}

// DeriveRelatedEntityNodes fetches the focus entity restricted to the given
// relationship types and derives the root, related-entity and context-scope
// nodes from it. A fetch that does not succeed, or finds no entity, yields an
// empty result without an error; the error is reserved for transport faults.
func (d *GraphDeriver) DeriveRelatedEntityNodes(ctx context.Context, focus common.Focus, relTypes RelationshipTypeResult) (RelatedEntityResult, error) {
	fetch, err := d.entities.GetEntity(ctx, focus.Query, focus.EntityID, focus.EntityType, relTypes.IDs())
	if err != nil {
		return emptyRelatedEntityResult(), fmt.Errorf("fetching entity snapshot: %w", err)
	}
	if !fetch.Success || fetch.Entity == nil {
		return emptyRelatedEntityResult(), nil
	}
	return relatedFromEntity(fetch.Entity), nil
}

func relatedFromEntity(entity *common.Entity) RelatedEntityResult {
	m := newMerger()
	m.nodes.Add(rootNode(entity))

	switch view := entity.Data.View().(type) {
	case common.ScopedRelationships:
		for _, scope := range view.Scopes {
			label := scope.Label()
			if label != "" {
				m.contextNodes.Add(contextNode(label))
			}
			m.mergeRelationships(scope.Relationships, label)
		}
	case common.FlatRelationships:
		m.mergeRelationships(view.Relationships, "")
	}

	return RelatedEntityResult{
		RelatedNodes: m.nodes.Items(),
		RelatedEdges: m.edges.Items(),
		ContextNodes: m.contextNodes.Items(),
		ContextEdges: m.contextEdges,
	}
}

type merger struct {
	nodes        *Set[common.GraphNode]
	edges        *Set[common.GraphEdge]
	contextNodes *Set[common.GraphNode]
	contextEdges []common.GraphEdge
}

func newMerger() *merger {
	return &merger{
		nodes:        NewNodeSet(),
		edges:        NewEdgeSet(),
		contextNodes: NewNodeSet(),
		contextEdges: []common.GraphEdge{},
	}
}

// mergeRelationships adds a node per related entity and the edges linking it
// to its relationship type and, when contextValue is set, to the context
// scope. Coalesced instances are linked to their relationship type only.
// Instances without a target id are skipped.
func (m *merger) mergeRelationships(relationships *common.Relationships, contextValue string) {
	if relationships == nil {
		return
	}
	inContext := contextValue != ""

	for pair := relationships.Oldest(); pair != nil; pair = pair.Next() {
		relKey := pair.Key
		for _, rel := range pair.Value {
			targetID := rel.RelTo.ID
			if targetID == "" {
				continue
			}
			m.nodes.Add(relatedEntityNode(targetID))

			if rel.IsCoalesced() {
				m.edges.Add(common.NewEdge(relKey, targetID, common.ColorOrange))
				continue
			}
			if inContext {
				m.edges.Add(common.NewEdge(contextValue, targetID, common.ColorGrey))
			}
			m.edges.Add(common.NewDashedEdge(relKey, targetID, common.ColorOrange, inContext))
		}
		if inContext {
			m.contextEdges = append(m.contextEdges, common.NewEdge(contextValue, relKey, common.ColorOrange))
		}
	}
}

func rootNode(entity *common.Entity) common.GraphNode {
	return common.GraphNode{
		ID:    entity.ID,
		Label: entity.Name,
		Shape: common.ShapeTriangle,
		Color: common.NodeColor{Background: common.ColorGreen},
	}
}

func relatedEntityNode(id string) common.GraphNode {
	return common.GraphNode{
		ID:    id,
		Label: id,
		Shape: common.ShapeDot,
		Size:  common.SizeRelatedEntity,
		Color: common.NodeColor{Background: common.ColorRelatedEntity},
	}
}

func contextNode(label string) common.GraphNode {
	return common.GraphNode{
		ID:    label,
		Label: label,
		Shape: common.ShapeSquare,
		Size:  common.SizeContextScope,
		Color: common.NodeColor{Background: common.ColorGrey},
	}
}
