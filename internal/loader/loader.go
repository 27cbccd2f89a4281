// Package loader reads workflow submissions from disk, dispatching on
// file extension: .json and .yaml/.yml files carry the same shape the
// HTTP API accepts, .hcl files use the native block syntax.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SquizAI/DW-final-sub000/internal/fsutil"
	"github.com/SquizAI/DW-final-sub000/internal/hclflow"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

// Extensions recognized as workflow definitions.
var workflowExtensions = []string{".hcl", ".json", ".yaml", ".yml"}

// Discover recursively collects the workflow files under root, in a
// stable order.
func Discover(root string) ([]string, error) {
	files, err := fsutil.FindFilesByExtension(root, workflowExtensions...)
	if err != nil {
		return nil, fmt.Errorf("scanning %s for workflow files: %w", root, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no workflow files found under %s", root)
	}
	return files, nil
}

// LoadFile parses the workflow definition at path. A missing workflow id
// defaults to the file's base name.
func LoadFile(ctx context.Context, path string) (*workflow.Request, error) {
	var (
		req *workflow.Request
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".hcl":
		req, err = hclflow.LoadFile(ctx, path)
	case ".json":
		req, err = loadJSON(path)
	case ".yaml", ".yml":
		req, err = loadYAML(path)
	default:
		return nil, fmt.Errorf("unsupported workflow file extension '%s' (want .hcl, .json, .yaml or .yml)", ext)
	}
	if err != nil {
		return nil, err
	}
	if req.WorkflowID == "" {
		base := filepath.Base(path)
		req.WorkflowID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return req, nil
}

func loadJSON(path string) (*workflow.Request, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow file: %w", err)
	}
	var req workflow.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("parsing workflow file %s: %w", path, err)
	}
	return &req, nil
}

func loadYAML(path string) (*workflow.Request, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow file: %w", err)
	}
	var req workflow.Request
	if err := yaml.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("parsing workflow file %s: %w", path, err)
	}
	return &req, nil
}
