// Package graph maintains the in-memory node/edge graph of one workflow definition
// and is the only sanctioned way to mutate it.
//
// A Graph is exclusively owned and not safe for concurrent use. None of its
// operations perform I/O. Every accessor hands out deep copies, so callers
// can never mutate a node or edge behind the graph's back.
package graph

import (
	"slices"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/google/uuid"
)

// Graph is a mutable directed graph of typed automation steps.
type Graph struct {
	id          string
	name        string
	description string

	nodes     map[string]*models.Node
	nodeOrder []string
	edges     map[string]*models.Edge
	edgeOrder []string

	newID func() string
}

// Option configures a Graph.
type Option func(*Graph)

// WithIDGenerator replaces the uuid generator used for new definition, node and edge ids.
func WithIDGenerator(fn func() string) Option {
	return func(g *Graph) {
		g.newID = fn
	}
}

// New creates an empty graph with a freshly generated definition id.
func New(name, description string, opts ...Option) *Graph {
	g := &Graph{
		name:        name,
		description: description,
		nodes:       make(map[string]*models.Node),
		edges:       make(map[string]*models.Edge),
		newID:       defaultID,
	}

	for _, opt := range opts {
		opt(g)
	}

	g.id = g.newID()

	return g
}

// FromDefinition builds a graph holding the given definition.
func FromDefinition(definition *models.WorkflowDefinition, opts ...Option) (*Graph, error) {
	g := New("", "", opts...)

	if err := g.Restore(definition); err != nil {
		return nil, err
	}

	return g, nil
}

func defaultID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

func (g *Graph) ID() string          { return g.id }
func (g *Graph) Name() string        { return g.name }
func (g *Graph) Description() string { return g.description }

func (g *Graph) SetName(name string) {
	g.name = name
}

func (g *Graph) SetDescription(description string) {
	g.description = description
}

func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (models.Node, bool) {
	node, ok := g.nodes[id]
	if !ok {
		return models.Node{}, false
	}

	return *node.Clone(), true
}

// Edge returns a copy of the edge with the given id.
func (g *Graph) Edge(id string) (models.Edge, bool) {
	edge, ok := g.edges[id]
	if !ok {
		return models.Edge{}, false
	}

	return *edge.Clone(), true
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []models.Node {
	out := make([]models.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, *g.nodes[id].Clone())
	}

	return out
}

// Edges returns copies of all edges in insertion order.
func (g *Graph) Edges() []models.Edge {
	out := make([]models.Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		out = append(out, *g.edges[id].Clone())
	}

	return out
}

// EdgesOf returns copies of every edge whose source or target is nodeID.
func (g *Graph) EdgesOf(nodeID string) []models.Edge {
	var out []models.Edge

	for _, id := range g.edgeOrder {
		if edge := g.edges[id]; edge.References(nodeID) {
			out = append(out, *edge.Clone())
		}
	}

	return out
}

// AddNode inserts a new node of the given kind. Keys missing from initial are
// filled with the kind's defaults.
func (g *Graph) AddNode(kind models.NodeKind, position models.Position, initial models.NodeData) (models.Node, error) {
	if !kind.IsValid() {
		return models.Node{}, newError("AddNode", string(kind), ErrUnknownKind)
	}

	if !position.IsFinite() {
		return models.Node{}, newError("AddNode", "", ErrInvalidPosition)
	}

	node := &models.Node{
		ID:       g.uniqueID(func(id string) bool { _, taken := g.nodes[id]; return taken }),
		Kind:     kind,
		Position: position,
		Data:     initial.WithDefaults(kind),
	}

	g.nodes[node.ID] = node
	g.nodeOrder = append(g.nodeOrder, node.ID)

	return *node.Clone(), nil
}

// NodePatch is a partial update of a node. Kind is deliberately absent:
// it cannot change after creation.
type NodePatch struct {
	Data     models.NodeData
	Position *models.Position
}

// UpdateNode merges patch into the node's data and position.
func (g *Graph) UpdateNode(nodeID string, patch NodePatch) (models.Node, error) {
	node, ok := g.nodes[nodeID]
	if !ok {
		return models.Node{}, newError("UpdateNode", nodeID, ErrNotFound)
	}

	if patch.Position != nil && !patch.Position.IsFinite() {
		return models.Node{}, newError("UpdateNode", nodeID, ErrInvalidPosition)
	}

	if len(patch.Data) > 0 {
		node.Data = node.Data.Merge(patch.Data)
	}

	if patch.Position != nil {
		node.Position = *patch.Position
	}

	return *node.Clone(), nil
}

// MoveNode changes only the position of a node.
func (g *Graph) MoveNode(nodeID string, position models.Position) (models.Node, error) {
	return g.UpdateNode(nodeID, NodePatch{Position: &position})
}

// RemoveNode deletes a node together with every edge that references it.
func (g *Graph) RemoveNode(nodeID string) error {
	if _, ok := g.nodes[nodeID]; !ok {
		return newError("RemoveNode", nodeID, ErrNotFound)
	}

	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(id string) bool {
		if g.edges[id].References(nodeID) {
			delete(g.edges, id)

			return true
		}

		return false
	})

	delete(g.nodes, nodeID)
	g.nodeOrder = slices.DeleteFunc(g.nodeOrder, func(id string) bool { return id == nodeID })

	return nil
}

// EdgeMetadata is the presentational part of an edge.
type EdgeMetadata struct {
	Label      string
	Style      map[string]any
	Transition *models.Transition
}

// Connect adds a directed edge between two existing nodes. Parallel edges and
// self-loops are allowed.
func (g *Graph) Connect(sourceID, targetID string, metadata EdgeMetadata) (models.Edge, error) {
	if _, ok := g.nodes[sourceID]; !ok {
		return models.Edge{}, newError("Connect", sourceID, ErrDanglingReference)
	}

	if _, ok := g.nodes[targetID]; !ok {
		return models.Edge{}, newError("Connect", targetID, ErrDanglingReference)
	}

	edge := &models.Edge{
		ID:     g.uniqueID(func(id string) bool { _, taken := g.edges[id]; return taken }),
		Source: sourceID,
		Target: targetID,
	}
	applyEdgeMetadata(edge, metadata)

	g.edges[edge.ID] = edge
	g.edgeOrder = append(g.edgeOrder, edge.ID)

	return *edge.Clone(), nil
}

// UpdateEdge replaces the presentational metadata of an edge. Endpoints never change.
func (g *Graph) UpdateEdge(edgeID string, metadata EdgeMetadata) (models.Edge, error) {
	edge, ok := g.edges[edgeID]
	if !ok {
		return models.Edge{}, newError("UpdateEdge", edgeID, ErrNotFound)
	}

	applyEdgeMetadata(edge, metadata)

	return *edge.Clone(), nil
}

// Disconnect removes an edge.
func (g *Graph) Disconnect(edgeID string) error {
	if _, ok := g.edges[edgeID]; !ok {
		return newError("Disconnect", edgeID, ErrNotFound)
	}

	delete(g.edges, edgeID)
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(id string) bool { return id == edgeID })

	return nil
}

func applyEdgeMetadata(edge *models.Edge, metadata EdgeMetadata) {
	edge.Label = metadata.Label
	edge.Style = map[string]any(models.NodeData(metadata.Style).Clone())
	edge.Transition = metadata.Transition.Clone()
}

// uniqueID draws ids until one is free. Collisions only happen with a custom
// generator or with ids imported through Restore.
func (g *Graph) uniqueID(taken func(string) bool) string {
	for {
		if id := g.newID(); id != "" && !taken(id) {
			return id
		}
	}
}
