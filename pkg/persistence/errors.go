// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrProcessNotFound indicates a process instance was not found by the given identifier.
	ErrProcessNotFound = errors.New("process not found")

	// ErrOrganizationNotFound indicates an organization was not found by the given identifier.
	ErrOrganizationNotFound = errors.New("organization not found")

	// ErrScheduleNotFound indicates a scheduled process was not found by the given identifier.
	ErrScheduleNotFound = errors.New("scheduled process not found")

	// ErrDepartmentNotFound indicates a department was not found by the given identifier.
	ErrDepartmentNotFound = errors.New("department not found")
)

// ProcessError wraps process-related errors with operation context.
type ProcessError struct {
	Op        string // Operation being performed (e.g., "GetByID", "Update")
	ProcessID string // Process instance ID if applicable
	Err       error  // Underlying error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s operation failed for process %s: %v", e.Op, e.ProcessID, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

func (e *ProcessError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewProcessError creates a new process error with context.
func NewProcessError(op, processID string, err error) *ProcessError {
	return &ProcessError{Op: op, ProcessID: processID, Err: err}
}

// WorkflowError wraps workflow-related errors with operation context.
type WorkflowError struct {
	Op         string
	WorkflowID string
	Err        error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{Op: op, WorkflowID: workflowID, Err: err}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsProcessNotFound checks if an error indicates a process was not found.
func IsProcessNotFound(err error) bool {
	return errors.Is(err, ErrProcessNotFound)
}

// IsOrganizationNotFound checks if an error indicates an organization was not found.
func IsOrganizationNotFound(err error) bool {
	return errors.Is(err, ErrOrganizationNotFound)
}
