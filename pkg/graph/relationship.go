package graph

import (
	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"
)

// RelationshipTypeResult holds the relationship-type nodes of an entity type
// and the edges linking the root entity to them.
type RelationshipTypeResult struct {
	Nodes []common.GraphNode
	Edges []common.GraphEdge
}

// IDs returns the relationship-type names, in schema order.
func (r RelationshipTypeResult) IDs() []string {
	ids := make([]string, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

// DeriveRelationshipTypeNodes turns the owned relationship definitions of an
// entity type into hexagon nodes linked to entityID. For every type name the
// first owned candidate, in schema order, provides the label. Types without
// an owned candidate produce nothing.
func DeriveRelationshipTypeNodes(entityID string, models *common.RelationshipModels) RelationshipTypeResult {
	res := RelationshipTypeResult{
		Nodes: []common.GraphNode{},
		Edges: []common.GraphEdge{},
	}
	if models == nil {
		return res
	}

	for pair := models.Oldest(); pair != nil; pair = pair.Next() {
		owned, ok := firstOwned(pair.Value)
		if !ok {
			continue
		}
		res.Nodes = append(res.Nodes, relationshipTypeNode(pair.Key, owned.Properties.ExternalName))
		res.Edges = append(res.Edges, common.NewEdge(entityID, pair.Key, common.ColorGreen))
	}
	return res
}

func firstOwned(candidates []common.RelationshipTypeModel) (common.RelationshipTypeModel, bool) {
	for _, m := range candidates {
		if m.IsOwned() {
			return m, true
		}
	}
	return common.RelationshipTypeModel{}, false
}

func relationshipTypeNode(typeName, label string) common.GraphNode {
	return common.GraphNode{
		ID:    typeName,
		Label: label,
		Shape: common.ShapeHexagon,
		Color: common.NodeColor{Background: common.ColorOrange},
	}
}
