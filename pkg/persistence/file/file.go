// Package file provides file-based persistence of workflow definitions, one
// JSON document per workflow.
package file

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
// A file:// prefix is accepted and stripped.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	info, err := os.Stat(fp.root)
	if err != nil {
		return fmt.Errorf("file persistence root %s: %w", fp.root, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("file persistence root %s is not a directory", fp.root)
	}

	return nil
}

func (fp *Persistence) Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	return fp.workflowRepo.GetAll(ctx)
}

func (fp *Persistence) WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	return fp.workflowRepo.GetByID(ctx, id)
}

func (fp *Persistence) SaveWorkflow(ctx context.Context, definition *models.WorkflowDefinition) error {
	return fp.workflowRepo.Save(ctx, definition)
}

func (fp *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	return fp.workflowRepo.Delete(ctx, id)
}
