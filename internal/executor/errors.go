package executor

import (
	"errors"
	"fmt"
)

// WorkflowExecutionError is the run-level failure type. It carries the
// workflow and execution ids and wraps the causing error, which stays
// reachable through errors.As / errors.Is.
type WorkflowExecutionError struct {
	WorkflowID  string
	ExecutionID string
	Err         error
}

func (e *WorkflowExecutionError) Error() string {
	return fmt.Sprintf("workflow '%s' (execution %s) failed: %v", e.WorkflowID, e.ExecutionID, e.Err)
}

func (e *WorkflowExecutionError) Unwrap() error {
	return e.Err
}

// NewWorkflowError wraps err as a run-level failure unless it already is one.
func NewWorkflowError(workflowID, executionID string, err error) *WorkflowExecutionError {
	var wErr *WorkflowExecutionError
	if errors.As(err, &wErr) {
		return wErr
	}
	return &WorkflowExecutionError{WorkflowID: workflowID, ExecutionID: executionID, Err: err}
}
