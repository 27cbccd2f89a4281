// Package processor defines the contract every node kind implements and the
// error taxonomy that crosses the node boundary. Processors are stateless
// per invocation: the executor creates one per node, runs the
// validate-inputs / execute / validate-outputs lifecycle and discards it.
package processor

import (
	"context"

	"github.com/SquizAI/DW-final-sub000/internal/artifact"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

// Inputs maps a node's target handles to the artifacts routed to them.
type Inputs = map[string]artifact.Artifact

// Outputs maps a node's output names to the artifacts it produced.
type Outputs = map[string]artifact.Artifact

// Progress receives incremental progress in [0,100] during execution.
type Progress func(percent int)

// Processor is the lifecycle contract for a single node. The executor's
// generic wrapper always runs ValidateInputs, Execute and ValidateOutputs in
// that order; implementations never need to call each other.
//
// RequiredInputs is a pure name-presence contract: type and shape checks are
// kind-specific and live inside each concrete processor.
type Processor interface {
	Kind() workflow.Kind
	NodeID() string

	RequiredInputs() []string
	ExpectedOutputs() []string

	ValidateInputs(inputs Inputs) error
	Execute(ctx context.Context, inputs Inputs, progress Progress) (Outputs, error)
	ValidateOutputs(outputs Outputs) error
}

// Base carries the identity shared by all processors; concrete processors
// embed it.
type Base struct {
	ID       string
	NodeKind workflow.Kind
}

// Kind returns the processor's node kind.
func (b Base) Kind() workflow.Kind {
	return b.NodeKind
}

// NodeID returns the id of the node this processor was created for.
func (b Base) NodeID() string {
	return b.ID
}

// RequireInputs checks that every required handle is present in inputs,
// returning a DataValidationError naming each missing one. It is the shared
// implementation of the name-presence part of ValidateInputs.
func RequireInputs(required []string, inputs Inputs) error {
	var problems []string
	for _, name := range required {
		if _, ok := inputs[name]; !ok {
			problems = append(problems, "missing required input '"+name+"'")
		}
	}
	if len(problems) > 0 {
		return &DataValidationError{Problems: problems}
	}
	return nil
}

// RequireOutputs checks that every declared output name was produced.
func RequireOutputs(expected []string, outputs Outputs) error {
	var problems []string
	for _, name := range expected {
		if _, ok := outputs[name]; !ok {
			problems = append(problems, "missing expected output '"+name+"'")
		}
	}
	if len(problems) > 0 {
		return &DataValidationError{Problems: problems}
	}
	return nil
}

// RequireTable checks that the artifact on the given handle carries tabular
// data, returning a DataValidationError otherwise.
func RequireTable(inputs Inputs, handle string) (*artifact.Table, error) {
	a, ok := inputs[handle]
	if !ok {
		return nil, &DataValidationError{Problems: []string{"missing required input '" + handle + "'"}}
	}
	if !a.IsTable() {
		return nil, &DataValidationError{Problems: []string{"input '" + handle + "' is not tabular data"}}
	}
	return a.Table, nil
}
