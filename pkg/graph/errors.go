package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced node or edge id is absent.
	ErrNotFound = errors.New("not found")

	// ErrDanglingReference indicates an edge would reference a node that does not exist.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrInvalidDefinition indicates a restored document breaks a structural invariant.
	ErrInvalidDefinition = errors.New("invalid definition")

	// ErrUnknownKind indicates a node kind outside the closed kind set.
	ErrUnknownKind = errors.New("unknown node kind")

	// ErrInvalidPosition indicates a non-finite coordinate.
	ErrInvalidPosition = errors.New("invalid position")
)

// Error wraps a graph error with the operation and the id it concerns.
type Error struct {
	Op     string // Operation being performed (e.g., "UpdateNode", "Connect")
	ID     string // Node, edge or definition id if applicable
	Detail string // Additional context message
	Err    error  // Underlying sentinel
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Err.Error()
	if e.ID != "" {
		msg = fmt.Sprintf("%s: %v %q", e.Op, e.Err, e.ID)
	}

	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, id string, err error) *Error {
	return &Error{Op: op, ID: id, Err: err}
}

func invalidDefinition(format string, args ...any) *Error {
	return &Error{Op: "Restore", Err: ErrInvalidDefinition, Detail: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is a missing node or edge.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDanglingReference reports whether err is an edge endpoint that does not exist.
func IsDanglingReference(err error) bool {
	return errors.Is(err, ErrDanglingReference)
}

// IsInvalidDefinition reports whether err is a rejected restore.
func IsInvalidDefinition(err error) bool {
	return errors.Is(err, ErrInvalidDefinition)
}
