package graph

import (
	"github.com/flowboard/flowboard/pkg/models"
)

// Snapshot returns a deep copy of the current definition. Later mutation of
// the graph never affects a snapshot already taken.
func (g *Graph) Snapshot() *models.WorkflowDefinition {
	definition := &models.WorkflowDefinition{
		ID:          g.id,
		Name:        g.name,
		Description: g.description,
		Nodes:       make([]*models.Node, 0, len(g.nodeOrder)),
		Edges:       make([]*models.Edge, 0, len(g.edgeOrder)),
	}

	for _, id := range g.nodeOrder {
		definition.Nodes = append(definition.Nodes, g.nodes[id].Clone())
	}

	for _, id := range g.edgeOrder {
		definition.Edges = append(definition.Edges, g.edges[id].Clone())
	}

	return definition
}

// Restore replaces the whole state of the graph with definition. The
// definition is validated first; on failure the graph is left untouched.
func (g *Graph) Restore(definition *models.WorkflowDefinition) error {
	if definition == nil {
		return invalidDefinition("definition is nil")
	}

	if definition.ID == "" {
		return invalidDefinition("definition id is empty")
	}

	nodes := make(map[string]*models.Node, len(definition.Nodes))
	nodeOrder := make([]string, 0, len(definition.Nodes))

	for i, node := range definition.Nodes {
		switch {
		case node == nil:
			return invalidDefinition("node %d is null", i)
		case node.ID == "":
			return invalidDefinition("node %d has an empty id", i)
		case !node.Kind.IsValid():
			return invalidDefinition("node %q has unknown kind %q", node.ID, node.Kind)
		case !node.Position.IsFinite():
			return invalidDefinition("node %q has a non-finite position", node.ID)
		}

		if _, dup := nodes[node.ID]; dup {
			return invalidDefinition("duplicate node id %q", node.ID)
		}

		clone := node.Clone()
		if clone.Data == nil {
			clone.Data = models.NodeData{}
		}

		nodes[node.ID] = clone
		nodeOrder = append(nodeOrder, node.ID)
	}

	edges := make(map[string]*models.Edge, len(definition.Edges))
	edgeOrder := make([]string, 0, len(definition.Edges))

	for i, edge := range definition.Edges {
		switch {
		case edge == nil:
			return invalidDefinition("edge %d is null", i)
		case edge.ID == "":
			return invalidDefinition("edge %d has an empty id", i)
		}

		if _, dup := edges[edge.ID]; dup {
			return invalidDefinition("duplicate edge id %q", edge.ID)
		}

		if _, ok := nodes[edge.Source]; !ok {
			return invalidDefinition("edge %q references missing source node %q", edge.ID, edge.Source)
		}

		if _, ok := nodes[edge.Target]; !ok {
			return invalidDefinition("edge %q references missing target node %q", edge.ID, edge.Target)
		}

		edges[edge.ID] = edge.Clone()
		edgeOrder = append(edgeOrder, edge.ID)
	}

	g.id = definition.ID
	g.name = definition.Name
	g.description = definition.Description
	g.nodes = nodes
	g.nodeOrder = nodeOrder
	g.edges = edges
	g.edgeOrder = edgeOrder

	return nil
}

const (
	layoutOriginX = 300
	layoutOriginY = 50
	layoutColumnW = 300
	layoutRowH    = 200
)

// AutoArrange lays nodes out on a two-column grid in insertion order.
func (g *Graph) AutoArrange() {
	for i, id := range g.nodeOrder {
		g.nodes[id].Position = models.Position{
			X: float64(layoutOriginX + (i%2)*layoutColumnW),
			Y: float64(layoutOriginY + (i/2)*layoutRowH),
		}
	}
}
