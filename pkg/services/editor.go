package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flowboard/flowboard/pkg/editor"
	"github.com/flowboard/flowboard/pkg/events"
	"github.com/flowboard/flowboard/pkg/graph"
	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
)

// EditAutoArrange names the layout gesture in edited events.
const EditAutoArrange = "autoArrange"

// EditRenamed names the rename gesture in edited events.
const EditRenamed = "renamed"

// Editor keeps one live graph per open workflow. Edits on the same workflow
// are serialized; different workflows never block each other.
type Editor struct {
	base

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu        sync.Mutex
	graph     *graph.Graph
	createdAt time.Time
}

// NewEditor creates a new editing service.
func NewEditor(p persistence.Persistence, opts ...Option) *Editor {
	return &Editor{
		base:     newBase(p, "editor_service", opts),
		sessions: make(map[string]*session),
	}
}

// Open loads the stored definition into a session unless one is already
// open, and returns its current snapshot.
func (e *Editor) Open(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	s, err := e.session(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot(), nil
}

// IsOpen reports whether id has a live session.
func (e *Editor) IsOpen(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.sessions[id]

	return ok
}

// Snapshot returns the live state of an open session, or the stored
// definition when the workflow is not being edited.
func (e *Editor) Snapshot(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	e.mu.Lock()
	s, ok := e.sessions[id]
	e.mu.Unlock()

	if !ok {
		return e.load(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot(), nil
}

// Apply performs one edit on the workflow's session, opening it if needed,
// and returns what the edit touched together with the resulting snapshot.
func (e *Editor) Apply(ctx context.Context, id string, edit editor.Edit) (editor.Result, *models.WorkflowDefinition, error) {
	s, err := e.session(ctx, id)
	if err != nil {
		return editor.Result{}, nil, err
	}

	s.mu.Lock()

	result, err := editor.Apply(s.graph, edit)
	if err != nil {
		s.mu.Unlock()

		return editor.Result{}, nil, err
	}

	snapshot := s.snapshot()
	s.mu.Unlock()

	e.publish(ctx, id, events.WorkflowEdited{
		BaseEvent: events.NewBaseEvent(events.WorkflowEditedEvent, id),
		Edit:      string(result.Type),
		NodeID:    result.NodeID,
		EdgeID:    result.EdgeID,
	})

	return result, snapshot, nil
}

// Rename changes the name and/or description of the session's definition.
// Nil arguments are left untouched.
func (e *Editor) Rename(ctx context.Context, id string, name, description *string) (*models.WorkflowDefinition, error) {
	return e.mutate(ctx, id, EditRenamed, func(g *graph.Graph) {
		if name != nil {
			g.SetName(*name)
		}

		if description != nil {
			g.SetDescription(*description)
		}
	})
}

// AutoArrange lays the session's nodes out on the two-column grid.
func (e *Editor) AutoArrange(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	return e.mutate(ctx, id, EditAutoArrange, (*graph.Graph).AutoArrange)
}

// Validate reports node data issues of the live or stored definition.
func (e *Editor) Validate(ctx context.Context, id string) ([]models.DataIssue, error) {
	definition, err := e.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	var issues []models.DataIssue

	for _, node := range definition.Nodes {
		for _, issue := range models.ValidateNodeData(node.Kind, node.Data) {
			issue.NodeID = node.ID
			issues = append(issues, issue)
		}
	}

	if issues == nil {
		issues = []models.DataIssue{}
	}

	return issues, nil
}

// Save persists the session's snapshot. The snapshot is taken under the
// session lock and written outside it, so concurrent saves of one workflow
// resolve last write wins in the backend. The session stays open.
func (e *Editor) Save(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	s, err := e.session(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	snapshot := s.snapshot()
	s.mu.Unlock()

	if err := models.ValidateDefinitionData(snapshot); err != nil {
		return nil, err
	}

	err = e.traced(ctx, "editor.save", id, func(ctx context.Context) error {
		return e.persistence.SaveWorkflow(ctx, snapshot)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	s.mu.Lock()
	if s.createdAt.IsZero() {
		s.createdAt = snapshot.CreatedAt
	}

	s.mu.Unlock()

	e.logger.InfoContext(ctx, "workflow saved", "workflow_id", id, "nodes", len(snapshot.Nodes), "edges", len(snapshot.Edges))

	e.publish(ctx, id, events.WorkflowSaved{
		BaseEvent: events.NewBaseEvent(events.WorkflowSavedEvent, id),
		Name:      snapshot.Name,
		NodeCount: len(snapshot.Nodes),
		EdgeCount: len(snapshot.Edges),
	})

	return snapshot, nil
}

// Discard drops the session and any unsaved edits. It reports whether a
// session was open.
func (e *Editor) Discard(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.sessions[id]
	delete(e.sessions, id)

	return ok
}

func (e *Editor) mutate(ctx context.Context, id, gesture string, fn func(g *graph.Graph)) (*models.WorkflowDefinition, error) {
	s, err := e.session(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	fn(s.graph)
	snapshot := s.snapshot()
	s.mu.Unlock()

	e.publish(ctx, id, events.WorkflowEdited{
		BaseEvent: events.NewBaseEvent(events.WorkflowEditedEvent, id),
		Edit:      gesture,
	})

	return snapshot, nil
}

// session returns the open session for id, loading it from storage on first use.
func (e *Editor) session(ctx context.Context, id string) (*session, error) {
	e.mu.Lock()
	s, ok := e.sessions[id]
	e.mu.Unlock()

	if ok {
		return s, nil
	}

	definition, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}

	g, err := graph.FromDefinition(definition)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptWorkflow, id, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// another request may have opened it while storage was being read
	if existing, ok := e.sessions[id]; ok {
		return existing, nil
	}

	s = &session{graph: g, createdAt: definition.CreatedAt}
	e.sessions[id] = s

	e.logger.DebugContext(ctx, "editing session opened", "workflow_id", id)

	return s, nil
}

func (e *Editor) load(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	var definition *models.WorkflowDefinition

	err := e.traced(ctx, "editor.load", id, func(ctx context.Context) error {
		var err error

		definition, err = e.persistence.WorkflowByID(ctx, id)

		return err
	})
	if err != nil {
		return nil, err
	}

	return definition, nil
}

// snapshot must be called with s.mu held.
func (s *session) snapshot() *models.WorkflowDefinition {
	definition := s.graph.Snapshot()
	definition.CreatedAt = s.createdAt

	return definition
}
