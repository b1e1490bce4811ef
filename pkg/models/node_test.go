package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeKind_IsValid(t *testing.T) {
	for _, kind := range NodeKinds() {
		assert.True(t, kind.IsValid(), "kind %s", kind)
	}

	assert.False(t, NodeKind("trigger").IsValid())
	assert.False(t, NodeKind("").IsValid())
	assert.Len(t, NodeKinds(), 7)
}

func TestPosition_IsFinite(t *testing.T) {
	assert.True(t, Position{X: -12.5, Y: 1e9}.IsFinite())
	assert.False(t, Position{X: math.NaN(), Y: 0}.IsFinite())
	assert.False(t, Position{X: 0, Y: math.Inf(1)}.IsFinite())
}

func TestDefaultData(t *testing.T) {
	testCases := []struct {
		kind       NodeKind
		configType string
	}{
		{NodeKindTrigger, "webhook"},
		{NodeKindAction, "api"},
		{NodeKindCondition, "condition"},
		{NodeKindDelay, "timer"},
		{NodeKindApproval, "manual"},
		{NodeKindSubWorkflow, "workflow"},
		{NodeKindErrorHandler, "retry"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			data := DefaultData(tc.kind)
			assert.Equal(t, tc.configType, data[DataKeyConfigType])
			assert.Equal(t, string(tc.kind), data[DataKeyLabel])
			assert.Equal(t, "", data[DataKeyDescription])
		})
	}
}

func TestNodeData_WithDefaults_KeepsProvidedKeys(t *testing.T) {
	data := NodeData{DataKeyLabel: "New Employee Added", "priority": "high"}

	out := data.WithDefaults(NodeKindTrigger)

	assert.Equal(t, "New Employee Added", out[DataKeyLabel])
	assert.Equal(t, "webhook", out[DataKeyConfigType])
	assert.Equal(t, "high", out["priority"])
	assert.NotContains(t, data, DataKeyConfigType, "input must not be modified")
}

func TestNodeData_WithDefaults_TreatsNilAsMissing(t *testing.T) {
	data := NodeData{DataKeyConfigType: nil, "owner": nil}

	out := data.WithDefaults(NodeKindTrigger)

	assert.Equal(t, "webhook", out[DataKeyConfigType])
	assert.NotContains(t, out, "owner")
	assert.Contains(t, data, "owner", "input must not be modified")
}

func TestNodeData_Merge(t *testing.T) {
	data := NodeData{DataKeyLabel: "A", DataKeyDescription: "desc", "extra": "keep"}

	out := data.Merge(NodeData{DataKeyLabel: "X", "extra": nil, "new": "value"})

	assert.Equal(t, NodeData{DataKeyLabel: "X", DataKeyDescription: "desc", "new": "value"}, out)
	assert.Equal(t, "A", data[DataKeyLabel], "input must not be modified")
}

func TestNodeData_Clone_IsDeep(t *testing.T) {
	data := NodeData{
		"nested": map[string]any{"inner": "a"},
		"list":   []any{"x", map[string]any{"y": "z"}},
	}

	clone := data.Clone()
	clone["nested"].(map[string]any)["inner"] = "changed"
	clone["list"].([]any)[1].(map[string]any)["y"] = "changed"

	assert.Equal(t, "a", data["nested"].(map[string]any)["inner"])
	assert.Equal(t, "z", data["list"].([]any)[1].(map[string]any)["y"])
}

func TestNode_Validation_MissingFields(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	err := validate.Struct(&Node{ID: "n1", Kind: NodeKindAction})
	require.NoError(t, err)

	err = validate.Struct(&Node{Kind: NodeKindAction})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ID")

	err = validate.Struct(&Edge{ID: "e1", Source: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Target")
}

func TestNode_JSONShape(t *testing.T) {
	node := &Node{
		ID:       "1",
		Kind:     NodeKindTrigger,
		Position: Position{X: 250, Y: 30.5},
		Data:     NodeData{DataKeyLabel: "New Employee Added", DataKeyConfigType: "webhook"},
	}

	raw, err := json.Marshal(node)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "1",
		"kind": "Trigger",
		"position": {"x": 250, "y": 30.5},
		"data": {"label": "New Employee Added", "configType": "webhook"}
	}`, string(raw))
}

func TestEdge_CloneAndReferences(t *testing.T) {
	edge := &Edge{
		ID:     "e1-2",
		Source: "1",
		Target: "2",
		Style:  map[string]any{"stroke": "#94A3B8"},
		Transition: &Transition{
			Label:      "Account Creation",
			Conditions: []TransitionCondition{{ID: "c1", Field: "department", Operator: "=", Value: "IT"}},
		},
	}

	clone := edge.Clone()
	clone.Style["stroke"] = "#000"
	clone.Transition.Conditions[0].Value = "HR"

	assert.Equal(t, "#94A3B8", edge.Style["stroke"])
	assert.Equal(t, "IT", edge.Transition.Conditions[0].Value)
	assert.True(t, edge.References("1"))
	assert.True(t, edge.References("2"))
	assert.False(t, edge.References("3"))
}

func TestTransition_Validation(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	assert.NoError(t, validate.Struct(&Transition{Label: "ok", ConditionLogic: "OR", Status: TransitionStatusPending}))
	assert.Error(t, validate.Struct(&Transition{ConditionLogic: "XOR"}))
	assert.Error(t, validate.Struct(&Transition{Status: "done"}))
	assert.Error(t, validate.Struct(&Transition{Conditions: []TransitionCondition{{Field: "priority"}}}))
}
