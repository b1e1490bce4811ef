package models

import "math"

// NodeKind is the closed set of step types a workflow can contain.
type NodeKind string

const (
	NodeKindTrigger      NodeKind = "Trigger"
	NodeKindAction       NodeKind = "Action"
	NodeKindCondition    NodeKind = "Condition"
	NodeKindDelay        NodeKind = "Delay"
	NodeKindApproval     NodeKind = "Approval"
	NodeKindSubWorkflow  NodeKind = "SubWorkflow"
	NodeKindErrorHandler NodeKind = "ErrorHandler"
)

var nodeKinds = []NodeKind{
	NodeKindTrigger,
	NodeKindAction,
	NodeKindCondition,
	NodeKindDelay,
	NodeKindApproval,
	NodeKindSubWorkflow,
	NodeKindErrorHandler,
}

// NodeKinds returns every supported kind in declaration order.
func NodeKinds() []NodeKind {
	kinds := make([]NodeKind, len(nodeKinds))
	copy(kinds, nodeKinds)

	return kinds
}

// IsValid reports whether k belongs to the closed kind set.
func (k NodeKind) IsValid() bool {
	for _, kind := range nodeKinds {
		if k == kind {
			return true
		}
	}

	return false
}

// Position is a purely presentational canvas coordinate.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Position) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Node represents a step instance in a workflow definition.
type Node struct {
	ID       string   `json:"id"       yaml:"id"       validate:"required"`
	Kind     NodeKind `json:"kind"     yaml:"kind"     validate:"required"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data"     yaml:"data"`
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	return &Node{
		ID:       n.ID,
		Kind:     n.Kind,
		Position: n.Position,
		Data:     n.Data.Clone(),
	}
}

// Label returns the node's label, or an empty string when absent or not a string.
func (n *Node) Label() string {
	label, _ := n.Data[DataKeyLabel].(string)

	return label
}
