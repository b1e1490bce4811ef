package models

// TransitionStatus is the presentational state of a transition.
type TransitionStatus string

const (
	TransitionStatusActive  TransitionStatus = "active"
	TransitionStatusFailed  TransitionStatus = "failed"
	TransitionStatusPending TransitionStatus = "pending"
)

// TransitionCondition is a display-only predicate attached to an edge.
type TransitionCondition struct {
	ID       string `json:"id"       yaml:"id"`
	Field    string `json:"field"    yaml:"field"    validate:"required"`
	Operator string `json:"operator" yaml:"operator" validate:"required"`
	Value    string `json:"value"    yaml:"value"`
}

// Transition describes an edge the way the builder's transition dialog edits it.
// It is never evaluated.
type Transition struct {
	Label          string                `json:"label"                    yaml:"label"`
	Description    string                `json:"description,omitempty"    yaml:"description,omitempty"`
	Conditions     []TransitionCondition `json:"conditions,omitempty"     yaml:"conditions,omitempty"     validate:"dive"`
	ConditionLogic string                `json:"conditionLogic,omitempty" yaml:"conditionLogic,omitempty" validate:"omitempty,oneof=AND OR"`
	Priority       int                   `json:"priority,omitempty"       yaml:"priority,omitempty"       validate:"min=0"`
	Status         TransitionStatus      `json:"status,omitempty"         yaml:"status,omitempty"         validate:"omitempty,oneof=active failed pending"`
	Color          string                `json:"color,omitempty"          yaml:"color,omitempty"`
}

// DefaultTransitionColor is the stroke a freshly connected edge is drawn with.
const DefaultTransitionColor = "#94A3B8"

// NewTransition returns the transition a freshly connected edge starts with.
func NewTransition() *Transition {
	return &Transition{
		Label:          "New Transition",
		Description:    "Configure this transition",
		ConditionLogic: "AND",
		Priority:       1,
		Status:         TransitionStatusActive,
		Color:          DefaultTransitionColor,
	}
}

// Clone returns a deep copy of the transition.
func (t *Transition) Clone() *Transition {
	if t == nil {
		return nil
	}

	clone := *t
	if t.Conditions != nil {
		clone.Conditions = make([]TransitionCondition, len(t.Conditions))
		copy(clone.Conditions, t.Conditions)
	}

	return &clone
}

// Edge is a directed connection between two nodes of the same definition.
type Edge struct {
	ID         string         `json:"id"                   yaml:"id"                   validate:"required"`
	Source     string         `json:"source"               yaml:"source"               validate:"required"`
	Target     string         `json:"target"               yaml:"target"               validate:"required"`
	Label      string         `json:"label,omitempty"      yaml:"label,omitempty"`
	Style      map[string]any `json:"style,omitempty"      yaml:"style,omitempty"`
	Transition *Transition    `json:"transition,omitempty" yaml:"transition,omitempty"`
}

// Clone returns a deep copy of the edge.
func (e *Edge) Clone() *Edge {
	if e == nil {
		return nil
	}

	return &Edge{
		ID:         e.ID,
		Source:     e.Source,
		Target:     e.Target,
		Label:      e.Label,
		Style:      cloneMap(e.Style),
		Transition: e.Transition.Clone(),
	}
}

// References reports whether the edge starts or ends at nodeID.
func (e *Edge) References(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}
