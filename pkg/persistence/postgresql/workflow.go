package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// GetAll returns all workflows that are not soft deleted.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , created_at
		  , updated_at
		FROM workflows
		WHERE deleted_at IS NULL
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	workflows := make([]*models.WorkflowDefinition, 0)

	for rows.Next() {
		workflow, err := scanWorkflowBase(rows)
		if err != nil {
			r.closeRows(ctx, rows)

			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	r.closeRows(ctx, rows)

	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	for _, workflow := range workflows {
		err := r.loadNodesAndEdges(ctx, workflow)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", workflow.ID, err)
		}
	}

	return workflows, nil
}

// GetByID returns the workflow with the given id or ErrWorkflowNotFound.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , created_at
		  , updated_at
		FROM workflows
		WHERE id = $1 AND deleted_at IS NULL
	`

	workflow, err := scanWorkflowBase(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	if err := r.loadNodesAndEdges(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to load workflow %s: %w", id, err)
	}

	return workflow, nil
}

// Save upserts a workflow and replaces its nodes and edges in one transaction.
// The row lock taken by the upsert serializes concurrent saves of the same id.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.WorkflowDefinition) (err error) {
	if workflow.ID == "" {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, persistence.ErrInvalidWorkflowID)
	}

	persistence.Stamp(workflow, time.Now().UTC().Truncate(time.Microsecond))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	workflowQuery := `
		INSERT INTO workflows (id, name, description, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, NULL)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			created_at = CASE WHEN workflows.deleted_at IS NULL THEN workflows.created_at ELSE EXCLUDED.created_at END,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL
		RETURNING created_at
	`

	err = tx.QueryRowContext(ctx, workflowQuery,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	).Scan(&workflow.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save workflow base: %w", err)
	}

	workflow.CreatedAt = workflow.CreatedAt.UTC()

	// Delete existing edges and nodes (for updates)
	_, err = tx.ExecContext(ctx, "DELETE FROM workflow_edges WHERE workflow_id = $1", workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to delete existing edges: %w", err)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM workflow_nodes WHERE workflow_id = $1", workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to delete existing nodes: %w", err)
	}

	err = saveNodes(ctx, tx, workflow)
	if err != nil {
		return fmt.Errorf("failed to save workflow nodes: %w", err)
	}

	err = saveEdges(ctx, tx, workflow)
	if err != nil {
		return fmt.Errorf("failed to save workflow edges: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete soft deletes a workflow by setting deleted_at timestamp.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE workflows SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (r *WorkflowRepository) loadNodesAndEdges(ctx context.Context, workflow *models.WorkflowDefinition) error {
	nodes, err := r.loadNodes(ctx, workflow.ID)
	if err != nil {
		return err
	}

	edges, err := r.loadEdges(ctx, workflow.ID)
	if err != nil {
		return err
	}

	workflow.Nodes = nodes
	workflow.Edges = edges

	return nil
}

func (r *WorkflowRepository) loadNodes(ctx context.Context, workflowID string) ([]*models.Node, error) {
	nodesQuery := `
		SELECT id, kind, position_x, position_y, data
		FROM workflow_nodes
		WHERE workflow_id = $1
		ORDER BY sort_order
	`

	rows, err := r.db.QueryContext(ctx, nodesQuery, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow nodes: %w", err)
	}

	defer r.closeRows(ctx, rows)

	nodes := make([]*models.Node, 0)

	for rows.Next() {
		var (
			node     models.Node
			dataJSON []byte
		)

		err := rows.Scan(&node.ID, &node.Kind, &node.Position.X, &node.Position.Y, &dataJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}

		err = unmarshalJSON(dataJSON, &node.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal node data: %w", err)
		}

		nodes = append(nodes, &node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}

	return nodes, nil
}

func (r *WorkflowRepository) loadEdges(ctx context.Context, workflowID string) ([]*models.Edge, error) {
	edgesQuery := `
		SELECT id, source_node_id, target_node_id, label, style, transition
		FROM workflow_edges
		WHERE workflow_id = $1
		ORDER BY sort_order
	`

	rows, err := r.db.QueryContext(ctx, edgesQuery, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow edges: %w", err)
	}

	defer r.closeRows(ctx, rows)

	edges := make([]*models.Edge, 0)

	for rows.Next() {
		var (
			edge                      models.Edge
			styleJSON, transitionJSON []byte
		)

		err := rows.Scan(&edge.ID, &edge.Source, &edge.Target, &edge.Label, &styleJSON, &transitionJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}

		err = unmarshalJSON(styleJSON, &edge.Style)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal edge style: %w", err)
		}

		err = unmarshalJSON(transitionJSON, &edge.Transition)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal edge transition: %w", err)
		}

		edges = append(edges, &edge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edges: %w", err)
	}

	return edges, nil
}

func (r *WorkflowRepository) closeRows(ctx context.Context, rows *sql.Rows) {
	err := rows.Close()
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}

func saveNodes(ctx context.Context, tx *sql.Tx, workflow *models.WorkflowDefinition) error {
	query := `
		INSERT INTO workflow_nodes (workflow_id, id, kind, position_x, position_y, data, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i, node := range workflow.Nodes {
		data := node.Data
		if data == nil {
			data = models.NodeData{}
		}

		dataJSON, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal node data: %w", err)
		}

		_, err = tx.ExecContext(ctx, query,
			workflow.ID,
			node.ID,
			node.Kind,
			node.Position.X,
			node.Position.Y,
			string(dataJSON),
			i,
		)
		if err != nil {
			return fmt.Errorf("failed to save node %s: %w", node.ID, err)
		}
	}

	return nil
}

func saveEdges(ctx context.Context, tx *sql.Tx, workflow *models.WorkflowDefinition) error {
	query := `
		INSERT INTO workflow_edges (workflow_id, id, source_node_id, target_node_id, label, style, transition, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for i, edge := range workflow.Edges {
		styleJSON, err := nullableJSON(edge.Style, edge.Style == nil)
		if err != nil {
			return fmt.Errorf("failed to marshal edge style: %w", err)
		}

		transitionJSON, err := nullableJSON(edge.Transition, edge.Transition == nil)
		if err != nil {
			return fmt.Errorf("failed to marshal edge transition: %w", err)
		}

		_, err = tx.ExecContext(ctx, query,
			workflow.ID,
			edge.ID,
			edge.Source,
			edge.Target,
			edge.Label,
			styleJSON,
			transitionJSON,
			i,
		)
		if err != nil {
			return fmt.Errorf("failed to save edge %s: %w", edge.ID, err)
		}
	}

	return nil
}

func nullableJSON(value any, isNil bool) (sql.NullString, error) {
	if isNil {
		return sql.NullString{}, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return sql.NullString{}, err
	}

	return sql.NullString{String: string(raw), Valid: true}, nil
}

func unmarshalJSON(raw []byte, target any) error {
	if raw == nil {
		return nil
	}

	return json.Unmarshal(raw, target)
}

func scanWorkflowBase(scanner interface {
	Scan(dest ...any) error
}) (*models.WorkflowDefinition, error) {
	var workflow models.WorkflowDefinition

	err := scanner.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.CreatedAt = workflow.CreatedAt.UTC()
	workflow.UpdatedAt = workflow.UpdatedAt.UTC()

	return &workflow, nil
}
