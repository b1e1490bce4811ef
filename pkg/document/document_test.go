package document_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/flowboard/flowboard/pkg/document"
	"github.com/flowboard/flowboard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDefinition() *models.WorkflowDefinition {
	return &models.WorkflowDefinition{
		ID:          "wf-onboarding",
		Name:        "Employee Onboarding",
		Description: "Automated workflow for new employee setup",
		Nodes: []*models.Node{
			{
				ID:       "1",
				Kind:     models.NodeKindTrigger,
				Position: models.Position{X: 250, Y: 30.5},
				Data: models.NodeData{
					models.DataKeyLabel:      "New Employee Added",
					models.DataKeyConfigType: "webhook",
					"retries":                float64(3),
				},
			},
			{
				ID:       "4",
				Kind:     models.NodeKindCondition,
				Position: models.Position{X: -12.75, Y: 360},
				Data:     models.NodeData{models.DataKeyLabel: "Department Check"},
			},
		},
		Edges: []*models.Edge{
			{
				ID:     "e1-4",
				Source: "1",
				Target: "4",
				Label:  "Yes",
				Style:  map[string]any{"stroke": "#10B981"},
				Transition: &models.Transition{
					Label:          "Yes",
					Conditions:     []models.TransitionCondition{{ID: "c1", Field: "department", Operator: "=", Value: "IT"}},
					ConditionLogic: "AND",
					Priority:       1,
					Status:         models.TransitionStatusActive,
				},
			},
		},
		CreatedAt: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, format := range []document.Format{document.FormatJSON, document.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()

			original := sampleDefinition()

			raw, err := document.Encode(original, format)
			require.NoError(t, err)
			assert.Equal(t, format, document.Detect(raw))

			decoded, err := document.Decode(raw, format)
			require.NoError(t, err)
			assert.Equal(t, original, decoded)
		})
	}
}

func TestEncode_EmptyDefinitionHasArrays(t *testing.T) {
	t.Parallel()

	raw, err := document.Encode(&models.WorkflowDefinition{ID: "wf"}, document.FormatJSON)
	require.NoError(t, err)

	assert.JSONEq(t, `{"id": "wf", "name": "", "description": "", "nodes": [], "edges": []}`, string(raw))

	decoded, err := document.Decode(raw, document.FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, decoded.Nodes)
}

func TestDecode_HandWrittenYAML(t *testing.T) {
	t.Parallel()

	raw := []byte(`
id: wf-yaml
name: Approvals
nodes:
  - id: a
    kind: Approval
    position: {x: 10, y: 20}
    data:
      label: Manager sign-off
      approver: manager
      1: numeric key
edges: []
`)

	definition, err := document.Decode(raw, document.FormatYAML)
	require.NoError(t, err)

	require.Len(t, definition.Nodes, 1)
	node := definition.Nodes[0]
	assert.Equal(t, models.NodeKindApproval, node.Kind)
	assert.Equal(t, models.Position{X: 10, Y: 20}, node.Position)
	assert.Equal(t, "manager", node.Data[models.DataKeyApprover])
	assert.Equal(t, "numeric key", node.Data["1"])
}

func TestDecode_SchemaViolations(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{
			name:    "missing id",
			raw:     `{"nodes": [], "edges": []}`,
			wantErr: document.ErrSchemaViolation,
		},
		{
			name:    "unknown kind",
			raw:     `{"id": "wf", "nodes": [{"id": "1", "kind": "Webhook", "position": {"x": 0, "y": 0}}], "edges": []}`,
			wantErr: document.ErrSchemaViolation,
		},
		{
			name:    "position is not numeric",
			raw:     `{"id": "wf", "nodes": [{"id": "1", "kind": "Action", "position": {"x": "0", "y": 0}}], "edges": []}`,
			wantErr: document.ErrSchemaViolation,
		},
		{
			name:    "label is not a string",
			raw:     `{"id": "wf", "nodes": [{"id": "1", "kind": "Action", "position": {"x": 0, "y": 0}, "data": {"label": 5}}], "edges": []}`,
			wantErr: document.ErrSchemaViolation,
		},
		{
			name:    "edge without target",
			raw:     `{"id": "wf", "nodes": [], "edges": [{"id": "e1", "source": "1"}]}`,
			wantErr: document.ErrSchemaViolation,
		},
		{
			name:    "invalid condition logic",
			raw:     `{"id": "wf", "nodes": [], "edges": [{"id": "e1", "source": "1", "target": "2", "transition": {"conditionLogic": "XOR"}}]}`,
			wantErr: document.ErrSchemaViolation,
		},
		{
			name:    "name longer than storage allows",
			raw:     `{"id": "wf", "name": "` + strings.Repeat("n", 256) + `", "nodes": [], "edges": []}`,
			wantErr: document.ErrSchemaViolation,
		},
		{
			name:    "node id longer than storage allows",
			raw:     `{"id": "wf", "nodes": [{"id": "` + strings.Repeat("1", 300) + `", "kind": "Action", "position": {"x": 0, "y": 0}}], "edges": []}`,
			wantErr: document.ErrSchemaViolation,
		},
		{
			name:    "truncated json",
			raw:     `{"id": "wf", "nodes": [`,
			wantErr: document.ErrMalformed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := document.Decode([]byte(tc.raw), document.FormatJSON)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestDecode_SchemaErrorListsIssues(t *testing.T) {
	t.Parallel()

	_, err := document.Decode([]byte(`{"nodes": "none", "edges": []}`), document.FormatJSON)
	require.Error(t, err)

	var schemaErr *document.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.GreaterOrEqual(t, len(schemaErr.Issues), 2)
}

func TestDecode_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := document.Decode([]byte("id: [unclosed"), document.FormatYAML)
	assert.ErrorIs(t, err, document.ErrMalformed)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input   string
		want    document.Format
		wantErr bool
	}{
		{input: "json", want: document.FormatJSON},
		{input: ".JSON", want: document.FormatJSON},
		{input: "yaml", want: document.FormatYAML},
		{input: ".yml", want: document.FormatYAML},
		{input: "application/x-yaml", want: document.FormatYAML},
		{input: "xml", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			got, err := document.ParseFormat(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, document.ErrUnsupportedFormat)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.NotEmpty(t, got.ContentType())
		})
	}
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := document.Encode(sampleDefinition(), document.Format("toml"))
	assert.ErrorIs(t, err, document.ErrUnsupportedFormat)

	_, err = document.Encode(nil, document.FormatJSON)
	assert.ErrorIs(t, err, document.ErrMalformed)
}
