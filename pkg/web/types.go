// Package web provides HTTP request and response types for the workflow API.
package web

import (
	"github.com/flowboard/flowboard/pkg/editor"
	"github.com/flowboard/flowboard/pkg/models"
)

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name        string `json:"name"               validate:"required,max=200"`
	Description string `json:"description"        validate:"max=2000"`
	Template    string `json:"template,omitempty"`
}

// UpdateWorkflowRequest renames or re-describes a workflow. Absent fields are
// left unchanged.
type UpdateWorkflowRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// AddNodeRequest represents the request body for adding a node.
type AddNodeRequest struct {
	Kind     models.NodeKind  `json:"kind"           validate:"required"`
	Position *models.Position `json:"position"       validate:"required"`
	Data     models.NodeData  `json:"data,omitempty"`
}

// UpdateNodeRequest patches a node. Data keys are merged into the node's data
// and a null value removes the key. At least one field must be present.
type UpdateNodeRequest struct {
	Data     models.NodeData  `json:"data,omitempty"     validate:"required_without=Position"`
	Position *models.Position `json:"position,omitempty" validate:"required_without=Data"`
}

// ConnectRequest represents the request body for connecting two nodes.
type ConnectRequest struct {
	Source     string             `json:"source"               validate:"required"`
	Target     string             `json:"target"               validate:"required"`
	Label      string             `json:"label,omitempty"`
	Style      map[string]any     `json:"style,omitempty"`
	Transition *models.Transition `json:"transition,omitempty"`
}

// UpdateEdgeRequest replaces the presentational metadata of an edge.
type UpdateEdgeRequest struct {
	Label      string             `json:"label,omitempty"`
	Style      map[string]any     `json:"style,omitempty"`
	Transition *models.Transition `json:"transition,omitempty"`
}

// EditResponse is returned for an applied edit event.
type EditResponse struct {
	Type     editor.EditType            `json:"type"`
	NodeID   string                     `json:"nodeId,omitempty"`
	EdgeID   string                     `json:"edgeId,omitempty"`
	Workflow *models.WorkflowDefinition `json:"workflow"`
}

// ValidationResponse reports node data issues of a workflow.
type ValidationResponse struct {
	Valid  bool               `json:"valid"`
	Issues []models.DataIssue `json:"issues"`
}
