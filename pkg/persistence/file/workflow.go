package file

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
)

var workflowIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,254}$`)

// WorkflowRepository handles workflow-related file operations.
type WorkflowRepository struct {
	root string // File system root for storing workflows
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (wr *WorkflowRepository) dir() string {
	return filepath.Join(wr.root, "workflows")
}

// path resolves the document path of id, refusing ids that could escape the
// workflows directory.
func (wr *WorkflowRepository) path(op, id string) (string, error) {
	if !workflowIDPattern.MatchString(id) || strings.Contains(id, "..") {
		return "", persistence.NewWorkflowError(op, id, persistence.ErrInvalidWorkflowID)
	}

	return filepath.Join(wr.dir(), id+".json"), nil
}

// GetAll returns every stored workflow ordered by creation time.
func (wr *WorkflowRepository) GetAll(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	jsonFiles, err := fs.Glob(os.DirFS(wr.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.WorkflowDefinition, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		workflowID := strings.TrimSuffix(file, ".json")

		workflow, err := wr.GetByID(ctx, workflowID)
		if errors.Is(err, persistence.ErrWorkflowNotFound) || errors.Is(err, persistence.ErrInvalidWorkflowID) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", workflowID, err)
		}

		workflows = append(workflows, workflow)
	}

	slices.SortFunc(workflows, func(a, b *models.WorkflowDefinition) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	return workflows, nil
}

// GetByID retrieves a workflow by its ID from the file system.
func (wr *WorkflowRepository) GetByID(_ context.Context, workflowID string) (*models.WorkflowDefinition, error) {
	filePath, err := wr.path("WorkflowByID", workflowID)
	if err != nil {
		return nil, err
	}

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewWorkflowError("WorkflowByID", workflowID, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	var workflow models.WorkflowDefinition

	err = json.Unmarshal(body, &workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", workflowID, err)
	}

	return &workflow, nil
}

// Save writes a workflow to the file system. The document is written to a
// temporary file first and renamed into place, so readers never observe a
// partial write.
func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.WorkflowDefinition) error {
	filePath, err := wr.path("SaveWorkflow", workflow.ID)
	if err != nil {
		return err
	}

	err = os.MkdirAll(wr.dir(), 0o750)
	if err != nil {
		return fmt.Errorf("failed to create workflows directory: %w", err)
	}

	if workflow.CreatedAt.IsZero() {
		if existing, err := os.ReadFile(filePath); err == nil {
			var stored models.WorkflowDefinition
			if json.Unmarshal(existing, &stored) == nil {
				workflow.CreatedAt = stored.CreatedAt
			}
		}
	}

	persistence.Stamp(workflow, time.Now().UTC())

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	tmp, err := os.CreateTemp(wr.dir(), workflow.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// Delete removes a workflow by its ID.
func (wr *WorkflowRepository) Delete(_ context.Context, id string) error {
	filePath, err := wr.path("DeleteWorkflow", id)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if os.IsNotExist(err) {
		return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	return nil
}
