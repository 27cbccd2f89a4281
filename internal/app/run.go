package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/SquizAI/DW-final-sub000/internal/ctxlog"
	"github.com/SquizAI/DW-final-sub000/internal/loader"
)

// RunPath executes the workflow file at path, or every workflow file
// under it when path is a directory.
func (a *App) RunPath(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return a.RunFile(ctx, path)
	}

	files, err := loader.Discover(path)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := a.RunFile(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

// RunFile loads the workflow definition at path, executes it to
// completion and writes the final status snapshot as JSON to the app's
// output writer. The returned error is non-nil for load failures and
// fatal runs.
func (a *App) RunFile(ctx context.Context, path string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Loading workflow file.", "path", path)

	req, err := loader.LoadFile(ctx, path)
	if err != nil {
		return err
	}
	a.logger.Info("🚀 Starting workflow execution.",
		"workflow_id", req.WorkflowID, "nodes", len(req.Nodes), "mode", req.ExecutionMode)

	exec, runErr := a.sessions.Run(ctx, req)
	if exec == nil {
		return runErr
	}

	snap := exec.Snapshot()
	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run summary: %w", err)
	}
	fmt.Fprintln(a.outW, string(out))

	if runErr != nil {
		return runErr
	}
	a.logger.Info("🏁 Workflow finished.", "status", snap.Status, "executed", len(snap.ExecutedNodes), "failed", len(snap.FailedNodes))
	return nil
}
