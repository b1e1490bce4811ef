// Package editor translates discrete edit events sent by a rendering surface
// into graph operations, one event to one call.
package editor

import (
	"errors"
	"fmt"

	"github.com/flowboard/flowboard/pkg/graph"
	"github.com/flowboard/flowboard/pkg/models"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidEdit indicates an edit event that is missing the fields its type requires.
var ErrInvalidEdit = errors.New("invalid edit")

// EditType names the user gesture an edit event stands for.
type EditType string

const (
	EditNodeAdded       EditType = "nodeAdded"
	EditNodeMoved       EditType = "nodeMoved"
	EditNodeRemoved     EditType = "nodeRemoved"
	EditNodeDataChanged EditType = "nodeDataChanged"
	EditEdgeAdded       EditType = "edgeAdded"
	EditEdgeRemoved     EditType = "edgeRemoved"
	EditEdgeChanged     EditType = "edgeChanged"
)

// Edit is one event from the rendering surface. Only the fields relevant to
// Type are read.
type Edit struct {
	Type EditType `json:"type" validate:"required,oneof=nodeAdded nodeMoved nodeRemoved nodeDataChanged edgeAdded edgeRemoved edgeChanged"`

	NodeID   string           `json:"nodeId,omitempty"   validate:"required_if=Type nodeMoved,required_if=Type nodeRemoved,required_if=Type nodeDataChanged"`
	Kind     models.NodeKind  `json:"kind,omitempty"     validate:"required_if=Type nodeAdded"`
	Position *models.Position `json:"position,omitempty" validate:"required_if=Type nodeAdded,required_if=Type nodeMoved"`
	Data     models.NodeData  `json:"data,omitempty"     validate:"required_if=Type nodeDataChanged"`

	EdgeID     string             `json:"edgeId,omitempty"     validate:"required_if=Type edgeRemoved,required_if=Type edgeChanged"`
	Source     string             `json:"source,omitempty"     validate:"required_if=Type edgeAdded"`
	Target     string             `json:"target,omitempty"     validate:"required_if=Type edgeAdded"`
	Label      string             `json:"label,omitempty"`
	Style      map[string]any     `json:"style,omitempty"`
	Transition *models.Transition `json:"transition,omitempty"`
}

// Result identifies what an applied edit touched.
type Result struct {
	Type   EditType `json:"type"`
	NodeID string   `json:"nodeId,omitempty"`
	EdgeID string   `json:"edgeId,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that edit carries the fields its type requires.
func (e Edit) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEdit, err)
	}

	return nil
}

// Apply performs the single graph operation edit stands for. A malformed edit
// fails with ErrInvalidEdit before the graph is touched; graph errors are
// returned as they are.
func Apply(g *graph.Graph, edit Edit) (Result, error) {
	if err := edit.Validate(); err != nil {
		return Result{}, err
	}

	result := Result{Type: edit.Type, NodeID: edit.NodeID, EdgeID: edit.EdgeID}

	switch edit.Type {
	case EditNodeAdded:
		node, err := g.AddNode(edit.Kind, *edit.Position, edit.Data)
		if err != nil {
			return Result{}, err
		}

		result.NodeID = node.ID
	case EditNodeMoved:
		if _, err := g.MoveNode(edit.NodeID, *edit.Position); err != nil {
			return Result{}, err
		}
	case EditNodeRemoved:
		if err := g.RemoveNode(edit.NodeID); err != nil {
			return Result{}, err
		}
	case EditNodeDataChanged:
		if _, err := g.UpdateNode(edit.NodeID, graph.NodePatch{Data: edit.Data, Position: edit.Position}); err != nil {
			return Result{}, err
		}
	case EditEdgeAdded:
		metadata := edit.metadata()
		if metadata.Transition == nil {
			metadata.Transition = models.NewTransition()
		}

		edge, err := g.Connect(edit.Source, edit.Target, metadata)
		if err != nil {
			return Result{}, err
		}

		result.EdgeID = edge.ID
	case EditEdgeRemoved:
		if err := g.Disconnect(edit.EdgeID); err != nil {
			return Result{}, err
		}
	case EditEdgeChanged:
		if _, err := g.UpdateEdge(edit.EdgeID, edit.metadata()); err != nil {
			return Result{}, err
		}
	}

	return result, nil
}

func (e Edit) metadata() graph.EdgeMetadata {
	return graph.EdgeMetadata{Label: e.Label, Style: e.Style, Transition: e.Transition}
}
