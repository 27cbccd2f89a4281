// Package hclflow loads workflow definitions written in HCL and turns
// them into the same submission shape the HTTP API accepts. A workflow
// file holds one optional `workflow` block plus `node` and `edge` blocks:
//
//	workflow "daily-report" {
//	  execution_mode = "parallel"
//	  stop_on_error  = true
//	}
//
//	node "src" {
//	  type = "source"
//	  config {
//	    path   = "input.csv"
//	    format = "csv"
//	  }
//	}
//
//	edge {
//	  source = "src"
//	  target = "inc"
//	}
package hclflow

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/SquizAI/DW-final-sub000/internal/ctxlog"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

type fileRoot struct {
	Workflow *workflowBlock `hcl:"workflow,block"`
	Nodes    []*nodeBlock   `hcl:"node,block"`
	Edges    []*edgeBlock   `hcl:"edge,block"`
}

type workflowBlock struct {
	ID            string `hcl:"id,label"`
	ExecutionMode string `hcl:"execution_mode,optional"`
	StopOnError   bool   `hcl:"stop_on_error,optional"`
}

type nodeBlock struct {
	ID     string       `hcl:"id,label"`
	Type   string       `hcl:"type"`
	Config *configBlock `hcl:"config,block"`
}

// configBlock keeps the kind-specific attributes as an undecoded body;
// each attribute is evaluated and converted to its native Go value.
type configBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type edgeBlock struct {
	Source       string `hcl:"source"`
	Target       string `hcl:"target"`
	SourceHandle string `hcl:"source_handle,optional"`
	TargetHandle string `hcl:"target_handle,optional"`
}

// LoadFile parses one HCL workflow file into a submission request.
func LoadFile(ctx context.Context, path string) (*workflow.Request, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing workflow file %s: %w", path, diags)
	}
	return decode(ctx, path, file.Body)
}

// LoadBytes parses an in-memory HCL workflow definition. The filename is
// used in diagnostics only.
func LoadBytes(ctx context.Context, filename string, src []byte) (*workflow.Request, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing workflow %s: %w", filename, diags)
	}
	return decode(ctx, filename, file.Body)
}

func decode(ctx context.Context, name string, body hcl.Body) (*workflow.Request, error) {
	logger := ctxlog.FromContext(ctx)

	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("decoding workflow %s: %w", name, diags)
	}

	req := &workflow.Request{}
	if root.Workflow != nil {
		req.WorkflowID = root.Workflow.ID
		req.ExecutionMode = root.Workflow.ExecutionMode
		req.StopOnError = root.Workflow.StopOnError
	}

	for _, nb := range root.Nodes {
		config, err := decodeConfigBody(nb.Config)
		if err != nil {
			return nil, fmt.Errorf("node '%s': %w", nb.ID, err)
		}
		req.Nodes = append(req.Nodes, workflow.RequestNode{
			ID:   nb.ID,
			Type: nb.Type,
			Data: config,
		})
	}
	for _, eb := range root.Edges {
		req.Edges = append(req.Edges, workflow.RequestEdge{
			Source:       eb.Source,
			Target:       eb.Target,
			SourceHandle: eb.SourceHandle,
			TargetHandle: eb.TargetHandle,
		})
	}

	logger.Debug("Workflow definition loaded.",
		"file", name, "nodes", len(req.Nodes), "edges", len(req.Edges))
	return req, nil
}

// decodeConfigBody evaluates every attribute of a node's config block
// into native Go values.
func decodeConfigBody(block *configBlock) (map[string]any, error) {
	if block == nil {
		return nil, nil
	}
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("reading config attributes: %w", diags)
	}
	config := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluating config attribute '%s': %w", name, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("config attribute '%s': %w", name, err)
		}
		config[name] = native
	}
	return config, nil
}
