// Package persistence provides the storage abstraction for workflow definition documents.
package persistence

import (
	"context"

	"github.com/flowboard/flowboard/pkg/models"
)

// Persistence stores and loads workflow definitions by id. Implementations
// surface storage errors to the caller and never retry.
type Persistence interface {
	Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error)
	// WorkflowByID fails with ErrWorkflowNotFound when no definition has the id.
	WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error)
	// SaveWorkflow inserts or replaces the definition. Concurrent saves of the
	// same id resolve last write wins. CreatedAt and UpdatedAt are stamped on
	// the given definition.
	SaveWorkflow(ctx context.Context, definition *models.WorkflowDefinition) error
	// DeleteWorkflow fails with ErrWorkflowNotFound when no definition has the id.
	DeleteWorkflow(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
