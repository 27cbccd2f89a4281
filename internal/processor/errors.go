package processor

import (
	"fmt"
	"strings"

	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

// NodeExecutionError is the only error type that crosses the node/run
// boundary. Any error raised inside a processor is wrapped into one before
// leaving the executor, carrying the node's id and kind alongside the
// original cause.
type NodeExecutionError struct {
	NodeID string
	Kind   workflow.Kind
	Err    error
}

// Error implements the error interface.
func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node '%s' (%s) failed: %v", e.NodeID, e.Kind, e.Err)
}

// Unwrap exposes the original cause, so classified sub-errors remain
// reachable via errors.As.
func (e *NodeExecutionError) Unwrap() error {
	return e.Err
}

// WrapNodeError wraps err into a NodeExecutionError unless it already is
// one for the same node.
func WrapNodeError(nodeID string, kind workflow.Kind, err error) *NodeExecutionError {
	if nodeErr, ok := err.(*NodeExecutionError); ok {
		return nodeErr
	}
	return &NodeExecutionError{NodeID: nodeID, Kind: kind, Err: err}
}

// DataValidationError reports one or more discrete input/output validation
// failures for a node, such as a missing required input or a non-tabular
// artifact where a table was expected.
type DataValidationError struct {
	Problems []string
}

// Error implements the error interface.
func (e *DataValidationError) Error() string {
	return "data validation failed: " + strings.Join(e.Problems, "; ")
}

// NodeConfigurationError reports an unregistered node kind or a config map
// that does not decode into the kind's typed configuration.
type NodeConfigurationError struct {
	NodeID string
	Kind   string
	Err    error
}

// Error implements the error interface.
func (e *NodeConfigurationError) Error() string {
	return fmt.Sprintf("node '%s' has invalid configuration for kind '%s': %v", e.NodeID, e.Kind, e.Err)
}

// Unwrap exposes the underlying decode or registry error.
func (e *NodeConfigurationError) Unwrap() error {
	return e.Err
}
