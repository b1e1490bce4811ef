// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/flowboard/flowboard/pkg/document"
	"github.com/flowboard/flowboard/pkg/editor"
	"github.com/flowboard/flowboard/pkg/graph"
	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
	"github.com/flowboard/flowboard/pkg/templates"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrWorkflowNil    = errors.New("workflow cannot be nil")
)

// ErrCorruptWorkflow indicates a stored definition that no longer restores
// into a graph. It is a server side failure.
var ErrCorruptWorkflow = errors.New("stored workflow is corrupt")

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Error codes carried by ServiceError and surfaced as the problem type.
const (
	CodeInvalidName       = "invalid_name"
	CodeUnknownTemplate   = "unknown_template"
	CodeMissingWorkflow   = "missing_workflow"
	CodeInvalidDefinition = "invalid_definition"
)

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorCode returns the code of the outermost ServiceError in err's chain.
func ErrorCode(err error) (string, bool) {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) && serviceErr.Code != "" {
		return serviceErr.Code, true
	}

	return "", false
}

// IsValidationError reports errors caused by the request itself (HTTP 400).
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, graph.ErrDanglingReference) ||
		errors.Is(err, graph.ErrInvalidDefinition) ||
		errors.Is(err, graph.ErrUnknownKind) ||
		errors.Is(err, graph.ErrInvalidPosition) ||
		errors.Is(err, editor.ErrInvalidEdit) ||
		errors.Is(err, templates.ErrUnknownTemplate) ||
		errors.Is(err, persistence.ErrInvalidWorkflowID) ||
		errors.Is(err, document.ErrSchemaViolation) ||
		errors.Is(err, document.ErrMalformed) ||
		errors.Is(err, document.ErrUnsupportedFormat) ||
		IsUnprocessableError(err)
}

// IsUnprocessableError reports well-formed definitions whose node data fails
// its type checks (HTTP 422).
func IsUnprocessableError(err error) bool {
	return errors.Is(err, models.ErrInvalidNodeData)
}

// IsNotFoundError reports a missing workflow, node or edge (HTTP 404).
func IsNotFoundError(err error) bool {
	return errors.Is(err, persistence.ErrWorkflowNotFound) ||
		errors.Is(err, graph.ErrNotFound)
}
