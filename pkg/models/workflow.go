// Package models defines the workflow definition document: typed nodes, directed edges and their metadata.
package models

import "time"

// WorkflowDefinition is the persisted description of an automation flow.
type WorkflowDefinition struct {
	ID          string    `json:"id"                  yaml:"id"                  validate:"required"`
	Name        string    `json:"name"                yaml:"name"`
	Description string    `json:"description"         yaml:"description"`
	Nodes       []*Node   `json:"nodes"               yaml:"nodes"`
	Edges       []*Edge   `json:"edges"               yaml:"edges"`
	CreatedAt   time.Time `json:"createdAt,omitzero"  yaml:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"  yaml:"updatedAt,omitempty"`
}

// Clone returns a deep copy of the definition. Nodes and edges are never shared.
func (w *WorkflowDefinition) Clone() *WorkflowDefinition {
	if w == nil {
		return nil
	}

	clone := &WorkflowDefinition{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Nodes:       make([]*Node, 0, len(w.Nodes)),
		Edges:       make([]*Edge, 0, len(w.Edges)),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}

	for _, node := range w.Nodes {
		if node != nil {
			clone.Nodes = append(clone.Nodes, node.Clone())
		}
	}

	for _, edge := range w.Edges {
		if edge != nil {
			clone.Edges = append(clone.Edges, edge.Clone())
		}
	}

	return clone
}

// NodeByID returns the node with the given id, or nil.
func (w *WorkflowDefinition) NodeByID(id string) *Node {
	for _, node := range w.Nodes {
		if node != nil && node.ID == id {
			return node
		}
	}

	return nil
}

// EdgeByID returns the edge with the given id, or nil.
func (w *WorkflowDefinition) EdgeByID(id string) *Edge {
	for _, edge := range w.Edges {
		if edge != nil && edge.ID == id {
			return edge
		}
	}

	return nil
}
