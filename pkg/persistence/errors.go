package persistence

import (
	"errors"
	"fmt"
	"time"

	"github.com/flowboard/flowboard/pkg/models"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrInvalidWorkflowID indicates an identifier the backend cannot store safely.
	ErrInvalidWorkflowID = errors.New("invalid workflow id")
)

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g., "WorkflowByID", "SaveWorkflow")
	WorkflowID string // Workflow ID if applicable
	Err        error  // Underlying error
	Message    string // Additional context message
}

func (e *WorkflowError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for workflow %s: %s (%v)", e.Op, e.WorkflowID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsInvalidWorkflowID checks if an error indicates an unusable workflow id.
func IsInvalidWorkflowID(err error) bool {
	return errors.Is(err, ErrInvalidWorkflowID)
}

// Stamp sets the persistence timestamps of definition: CreatedAt once,
// UpdatedAt on every save.
func Stamp(definition *models.WorkflowDefinition, now time.Time) {
	if definition.CreatedAt.IsZero() {
		definition.CreatedAt = now
	}

	definition.UpdatedAt = now
}
