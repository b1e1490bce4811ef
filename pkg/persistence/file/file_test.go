package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefinition(id string) *models.WorkflowDefinition {
	return &models.WorkflowDefinition{
		ID:          id,
		Name:        "Employee Onboarding",
		Description: "Automated workflow for new employee setup",
		Nodes: []*models.Node{
			{
				ID:       "1",
				Kind:     models.NodeKindTrigger,
				Position: models.Position{X: 250.25, Y: 30},
				Data:     models.NodeData{models.DataKeyLabel: "New Employee Added", models.DataKeyConfigType: "webhook"},
			},
			{
				ID:       "2",
				Kind:     models.NodeKindAction,
				Position: models.Position{X: -250, Y: 140.5},
				Data:     models.NodeData{models.DataKeyLabel: "Create Accounts", "nested": map[string]any{"a": "b"}},
			},
		},
		Edges: []*models.Edge{
			{
				ID:         "e1-2",
				Source:     "1",
				Target:     "2",
				Label:      "Account Creation",
				Transition: &models.Transition{Label: "Account Creation", Status: models.TransitionStatusPending},
			},
		},
	}
}

func TestNewPersistence(t *testing.T) {
	t.Parallel()

	p := NewPersistence("/tmp/test")
	fp := p.(*Persistence)
	assert.Equal(t, "/tmp/test", fp.root)

	p = NewPersistence("file:///tmp/test")
	fp = p.(*Persistence)
	assert.Equal(t, "/tmp/test", fp.root)
}

func TestPersistence_Close(t *testing.T) {
	t.Parallel()

	p := NewPersistence("./test-data")
	assert.NoError(t, p.Close(t.Context()))
}

func TestPersistence_HealthCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, NewPersistence(dir).HealthCheck(t.Context()))

	assert.Error(t, NewPersistence(filepath.Join(dir, "missing")).HealthCheck(t.Context()))

	regular := filepath.Join(dir, "regular")
	require.NoError(t, os.WriteFile(regular, []byte("x"), 0o600))
	assert.Error(t, NewPersistence(regular).HealthCheck(t.Context()))
}

func TestPersistence_SaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	p := NewPersistence(t.TempDir())
	definition := testDefinition("wf-onboarding")

	require.NoError(t, p.SaveWorkflow(t.Context(), definition))
	assert.False(t, definition.CreatedAt.IsZero())
	assert.Equal(t, definition.CreatedAt, definition.UpdatedAt)

	loaded, err := p.WorkflowByID(t.Context(), "wf-onboarding")
	require.NoError(t, err)

	assert.Equal(t, definition.ID, loaded.ID)
	assert.Equal(t, definition.Nodes, loaded.Nodes)
	assert.Equal(t, definition.Edges, loaded.Edges)
	assert.True(t, definition.CreatedAt.Equal(loaded.CreatedAt))
}

func TestPersistence_SaveKeepsCreatedAt(t *testing.T) {
	t.Parallel()

	p := NewPersistence(t.TempDir())

	first := testDefinition("wf")
	require.NoError(t, p.SaveWorkflow(t.Context(), first))

	second := testDefinition("wf")
	second.Name = "Renamed"
	require.NoError(t, p.SaveWorkflow(t.Context(), second))

	loaded, err := p.WorkflowByID(t.Context(), "wf")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", loaded.Name)
	assert.True(t, first.CreatedAt.Equal(loaded.CreatedAt))
	assert.False(t, loaded.UpdatedAt.Before(loaded.CreatedAt))
}

func TestPersistence_WorkflowsAndDelete(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := NewPersistence(dir)

	workflows, err := p.Workflows(t.Context())
	require.NoError(t, err)
	assert.Empty(t, workflows)

	require.NoError(t, p.SaveWorkflow(t.Context(), testDefinition("b")))
	require.NoError(t, p.SaveWorkflow(t.Context(), testDefinition("a")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "workflows", "notes.txt"), []byte("ignored"), 0o600))

	workflows, err = p.Workflows(t.Context())
	require.NoError(t, err)
	require.Len(t, workflows, 2)

	ids := []string{workflows[0].ID, workflows[1].ID}
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, p.DeleteWorkflow(t.Context(), "a"))

	_, err = p.WorkflowByID(t.Context(), "a")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	err = p.DeleteWorkflow(t.Context(), "a")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	workflows, err = p.Workflows(t.Context())
	require.NoError(t, err)
	require.Len(t, workflows, 1)
	assert.Equal(t, "b", workflows[0].ID)
}

func TestPersistence_RejectsUnsafeIDs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := NewPersistence(dir)

	for _, id := range []string{"", "../escape", "a/b", `a\b`, ".hidden", "a..b", "wf id"} {
		t.Run(id, func(t *testing.T) {
			err := p.SaveWorkflow(t.Context(), testDefinition(id))
			assert.True(t, persistence.IsInvalidWorkflowID(err), "save %q: %v", id, err)

			_, err = p.WorkflowByID(t.Context(), id)
			assert.True(t, persistence.IsInvalidWorkflowID(err), "load %q: %v", id, err)

			err = p.DeleteWorkflow(t.Context(), id)
			assert.True(t, persistence.IsInvalidWorkflowID(err), "delete %q: %v", id, err)
		})
	}

	_, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestPersistence_CorruptDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "workflows"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "workflows", "broken.json"), []byte("{"), 0o600))

	p := NewPersistence(dir)

	_, err := p.WorkflowByID(t.Context(), "broken")
	require.Error(t, err)
	assert.False(t, persistence.IsWorkflowNotFound(err))

	_, err = p.Workflows(t.Context())
	assert.Error(t, err)
}
