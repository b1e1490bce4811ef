package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowboard/flowboard/pkg/events"
	"github.com/flowboard/flowboard/pkg/graph"
	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
	"github.com/flowboard/flowboard/pkg/templates"
)

var (
	// ErrWorkflowNotFound is returned when a workflow is not found.
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
)

// Workflow manages stored workflow definitions.
type Workflow struct {
	base
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(p persistence.Persistence, opts ...Option) *Workflow {
	return &Workflow{base: newBase(p, "workflow_service", opts)}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns every stored definition.
func (w *Workflow) List(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	var definitions []*models.WorkflowDefinition

	err := w.traced(ctx, "workflow.list", "", func(ctx context.Context) error {
		var err error

		definitions, err = w.persistence.Workflows(ctx)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	if definitions == nil {
		definitions = []*models.WorkflowDefinition{}
	}

	return definitions, nil
}

// FetchByID retrieves a stored definition by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	var definition *models.WorkflowDefinition

	err := w.traced(ctx, "workflow.fetch", id, func(ctx context.Context) error {
		var err error

		definition, err = w.persistence.WorkflowByID(ctx, id)

		return err
	})
	if err != nil {
		return nil, err
	}

	return definition, nil
}

// Create stores a new definition seeded from the named template. An empty
// template name creates a blank definition.
func (w *Workflow) Create(ctx context.Context, name, description, template string) (*models.WorkflowDefinition, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("workflow.create", CodeInvalidName, "workflow name is required", ErrInvalidRequest)
	}

	if template == "" {
		template = templates.Blank
	}

	tmpl, err := templates.Lookup(template)
	if err != nil {
		return nil, NewValidationError("workflow.create", CodeUnknownTemplate, err.Error(), err)
	}

	g := graph.New(name, description)
	if err := tmpl.Apply(g); err != nil {
		return nil, fmt.Errorf("failed to apply template: %w", err)
	}

	definition := g.Snapshot()
	if err := w.save(ctx, "workflow.create", definition); err != nil {
		return nil, err
	}

	w.logger.InfoContext(ctx, "workflow created", "workflow_id", definition.ID, "template", template)

	w.publish(ctx, definition.ID, events.WorkflowCreated{
		BaseEvent: events.NewBaseEvent(events.WorkflowCreatedEvent, definition.ID),
		Name:      definition.Name,
		Template:  template,
		NodeCount: len(definition.Nodes),
		EdgeCount: len(definition.Edges),
	})

	return definition, nil
}

// Import stores a complete definition, typically decoded from a document.
// It is checked the same way Restore checks it and replaces any stored
// definition with the same id.
func (w *Workflow) Import(ctx context.Context, definition *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	if definition == nil {
		return nil, NewValidationError("workflow.import", CodeMissingWorkflow, "", ErrWorkflowNil)
	}

	g, err := graph.FromDefinition(definition)
	if err != nil {
		return nil, NewValidationError("workflow.import", CodeInvalidDefinition, "", err)
	}

	imported := g.Snapshot()
	imported.CreatedAt = definition.CreatedAt

	if err := w.save(ctx, "workflow.import", imported); err != nil {
		return nil, err
	}

	w.publish(ctx, imported.ID, events.WorkflowCreated{
		BaseEvent: events.NewBaseEvent(events.WorkflowCreatedEvent, imported.ID),
		Name:      imported.Name,
		NodeCount: len(imported.Nodes),
		EdgeCount: len(imported.Edges),
	})

	return imported, nil
}

// Delete removes a stored definition by its ID.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	err := w.traced(ctx, "workflow.delete", id, func(ctx context.Context) error {
		return w.persistence.DeleteWorkflow(ctx, id)
	})
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return err
		}

		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	w.publish(ctx, id, events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, id),
	})

	return nil
}

// save checks node data and persists definition.
func (w *Workflow) save(ctx context.Context, op string, definition *models.WorkflowDefinition) error {
	if err := models.ValidateDefinitionData(definition); err != nil {
		return err
	}

	err := w.traced(ctx, op, definition.ID, func(ctx context.Context) error {
		return w.persistence.SaveWorkflow(ctx, definition)
	})
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	return nil
}
