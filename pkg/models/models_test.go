package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDefinition() *WorkflowDefinition {
	return &WorkflowDefinition{
		ID:          "wf-1",
		Name:        "Employee Onboarding",
		Description: "Automated workflow for new employee setup",
		Nodes: []*Node{
			{ID: "1", Kind: NodeKindTrigger, Position: Position{X: 250, Y: 30}, Data: NodeData{DataKeyLabel: "New Employee Added"}},
			{ID: "2", Kind: NodeKindAction, Position: Position{X: 250, Y: 140}, Data: NodeData{DataKeyLabel: "Create Accounts"}},
		},
		Edges: []*Edge{
			{ID: "e1-2", Source: "1", Target: "2", Label: "Account Creation"},
		},
	}
}

func TestWorkflowDefinition_Clone(t *testing.T) {
	original := sampleDefinition()

	clone := original.Clone()
	require.Equal(t, original, clone)

	clone.Name = "changed"
	clone.Nodes[0].Data[DataKeyLabel] = "changed"
	clone.Nodes[1].Position.X = 0
	clone.Edges[0].Target = "1"
	clone.Nodes = append(clone.Nodes, &Node{ID: "3"})

	assert.Equal(t, "Employee Onboarding", original.Name)
	assert.Equal(t, "New Employee Added", original.Nodes[0].Data[DataKeyLabel])
	assert.InDelta(t, 250.0, original.Nodes[1].Position.X, 0)
	assert.Equal(t, "2", original.Edges[0].Target)
	assert.Len(t, original.Nodes, 2)
}

func TestWorkflowDefinition_CloneNil(t *testing.T) {
	var definition *WorkflowDefinition

	assert.Nil(t, definition.Clone())
}

func TestWorkflowDefinition_Lookups(t *testing.T) {
	definition := sampleDefinition()

	assert.Equal(t, "Create Accounts", definition.NodeByID("2").Label())
	assert.Nil(t, definition.NodeByID("missing"))
	assert.Equal(t, "1", definition.EdgeByID("e1-2").Source)
	assert.Nil(t, definition.EdgeByID("missing"))
}

func TestValidateNodeData(t *testing.T) {
	testCases := []struct {
		name     string
		kind     NodeKind
		data     NodeData
		wantKeys []string
	}{
		{
			name: "defaults are valid for every kind",
			kind: NodeKindErrorHandler,
			data: DefaultData(NodeKindErrorHandler),
		},
		{
			name: "empty data is valid",
			kind: NodeKindAction,
			data: NodeData{},
		},
		{
			name:     "label must be a string",
			kind:     NodeKindAction,
			data:     NodeData{DataKeyLabel: 42},
			wantKeys: []string{DataKeyLabel},
		},
		{
			name: "unknown keys are ignored",
			kind: NodeKindAction,
			data: NodeData{"retries": 3, "headers": map[string]any{"a": "b"}},
		},
		{
			name: "valid trigger schedule",
			kind: NodeKindTrigger,
			data: NodeData{DataKeyConfigType: "schedule", DataKeySchedule: "*/5 * * * *"},
		},
		{
			name:     "invalid trigger schedule",
			kind:     NodeKindTrigger,
			data:     NodeData{DataKeySchedule: "every five minutes"},
			wantKeys: []string{DataKeySchedule},
		},
		{
			name: "valid condition expression",
			kind: NodeKindCondition,
			data: NodeData{DataKeyExpression: `department == "IT" && priority > 2`},
		},
		{
			name:     "invalid condition expression",
			kind:     NodeKindCondition,
			data:     NodeData{DataKeyExpression: `department == `},
			wantKeys: []string{DataKeyExpression},
		},
		{
			name: "valid delay duration",
			kind: NodeKindDelay,
			data: NodeData{DataKeyDuration: "1h30m"},
		},
		{
			name:     "negative delay duration",
			kind:     NodeKindDelay,
			data:     NodeData{DataKeyDuration: "-5m"},
			wantKeys: []string{DataKeyDuration},
		},
		{
			name:     "unparsable delay duration",
			kind:     NodeKindDelay,
			data:     NodeData{DataKeyDuration: "soon"},
			wantKeys: []string{DataKeyDuration},
		},
		{
			name:     "approver must be a string",
			kind:     NodeKindApproval,
			data:     NodeData{DataKeyApprover: []any{"a"}},
			wantKeys: []string{DataKeyApprover},
		},
		{
			name:     "sub-workflow id must not be blank",
			kind:     NodeKindSubWorkflow,
			data:     NodeData{DataKeyWorkflowID: "  "},
			wantKeys: []string{DataKeyWorkflowID},
		},
		{
			name:     "unknown retry policy",
			kind:     NodeKindErrorHandler,
			data:     NodeData{DataKeyRetryPolicy: "forever"},
			wantKeys: []string{DataKeyRetryPolicy},
		},
		{
			name:     "several issues are all reported",
			kind:     NodeKindDelay,
			data:     NodeData{DataKeyLabel: 1, DataKeyConfigType: true, DataKeyDuration: "x"},
			wantKeys: []string{DataKeyLabel, DataKeyConfigType, DataKeyDuration},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			issues := ValidateNodeData(tc.kind, tc.data)

			keys := make([]string, 0, len(issues))
			for _, issue := range issues {
				keys = append(keys, issue.Key)
			}

			if len(tc.wantKeys) == 0 {
				assert.Empty(t, issues)
			} else {
				assert.ElementsMatch(t, tc.wantKeys, keys)
			}
		})
	}
}

func TestValidateDefinitionData(t *testing.T) {
	definition := sampleDefinition()
	require.NoError(t, ValidateDefinitionData(definition))

	definition.Nodes[1].Data[DataKeyDescription] = []any{"not", "a", "string"}

	err := ValidateDefinitionData(definition)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidNodeData)

	var dataErr *DataValidationError
	require.True(t, errors.As(err, &dataErr))
	require.Len(t, dataErr.Issues, 1)
	assert.Equal(t, "2", dataErr.Issues[0].NodeID)
	assert.Equal(t, DataKeyDescription, dataErr.Issues[0].Key)
	assert.Contains(t, err.Error(), "node 2: description")
}
