// Package datastore holds the intermediate artifacts a run produces, keyed
// by "nodeId:outputName". Small payloads stay resident in memory; payloads
// over the spill threshold are written to a run-scoped cache directory and
// rehydrated transparently on read. Artifacts are write-once: a second
// Store call for the same dataId fully replaces the prior value.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/SquizAI/DW-final-sub000/internal/artifact"
	"github.com/SquizAI/DW-final-sub000/internal/ctxlog"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

// DefaultSpillThreshold is the encoded-payload size above which an artifact
// is spilled to disk instead of kept in memory.
const DefaultSpillThreshold = 10 << 20 // 10 MB

// ErrNotFound is returned by Get for an unknown dataId.
var ErrNotFound = errors.New("artifact not found")

// Config configures a Store.
type Config struct {
	// CacheDir is the run-scoped directory spilled artifacts are written to.
	CacheDir string
	// SpillThreshold overrides DefaultSpillThreshold when positive.
	SpillThreshold int64
}

// Store is the shared artifact store for a single run. All methods are safe
// for concurrent use; the bookkeeping map is the only shared mutable state.
type Store struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	cacheDir  string
	threshold int64
}

// entry tracks one stored artifact: either resident bytes or a file path.
type entry struct {
	inline []byte
	path   string
	size   int64
}

// New creates a Store backed by the given cache directory, creating the
// directory if needed.
func New(cfg Config) (*Store, error) {
	if cfg.CacheDir == "" {
		return nil, errors.New("CacheDir is a required configuration field and cannot be empty")
	}
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact cache directory: %w", err)
	}
	threshold := cfg.SpillThreshold
	if threshold <= 0 {
		threshold = DefaultSpillThreshold
	}
	return &Store{
		entries:   make(map[string]*entry),
		cacheDir:  cfg.CacheDir,
		threshold: threshold,
	}, nil
}

// DataID builds the canonical artifact key for a node output.
func DataID(nodeID, outputName string) string {
	return nodeID + ":" + outputName
}

// Store saves a node output and returns its dataId. The spill decision is
// based on the encoded payload size, never on element count.
func (s *Store) Store(ctx context.Context, nodeID, outputName string, a artifact.Artifact) (string, error) {
	logger := ctxlog.FromContext(ctx)
	dataID := DataID(nodeID, outputName)

	raw, err := a.Encode()
	if err != nil {
		return "", fmt.Errorf("storing artifact '%s': %w", dataID, err)
	}

	next := &entry{size: int64(len(raw))}
	if next.size <= s.threshold {
		next.inline = raw
	} else {
		path := filepath.Join(s.cacheDir, sanitizeDataID(dataID)+".json")
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return "", fmt.Errorf("spilling artifact '%s' to disk: %w", dataID, err)
		}
		next.path = path
		logger.Debug("Artifact spilled to disk.", "data_id", dataID, "bytes", next.size, "path", path)
	}

	s.mu.Lock()
	prev := s.entries[dataID]
	s.entries[dataID] = next
	s.mu.Unlock()

	// A replaced spilled artifact leaves a stale file behind unless the new
	// value landed on the same path.
	if prev != nil && prev.path != "" && prev.path != next.path {
		if err := os.Remove(prev.path); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove replaced artifact file.", "path", prev.path, "error", err)
		}
	}

	logger.Debug("Artifact stored.", "data_id", dataID, "bytes", next.size, "spilled", next.path != "")
	return dataID, nil
}

// Get retrieves an artifact by dataId, rehydrating it from disk when it was
// spilled. Callers cannot tell the two cases apart.
func (s *Store) Get(ctx context.Context, dataID string) (artifact.Artifact, error) {
	s.mu.RLock()
	e, ok := s.entries[dataID]
	s.mu.RUnlock()
	if !ok {
		return artifact.Artifact{}, fmt.Errorf("'%s': %w", dataID, ErrNotFound)
	}

	raw := e.inline
	if raw == nil {
		var err error
		raw, err = os.ReadFile(e.path)
		if err != nil {
			return artifact.Artifact{}, fmt.Errorf("rehydrating artifact '%s': %w", dataID, err)
		}
	}
	return artifact.Decode(raw)
}

// GetNodeInputs resolves a node's inputs via its edges, keyed by target
// handle. Edges targeting other nodes are ignored, so the full edge list
// may be passed as-is. A missing upstream artifact is logged and skipped;
// whether the gap is fatal is decided by the consuming processor's
// required-input check, not here.
func (s *Store) GetNodeInputs(ctx context.Context, nodeID string, edges []workflow.Edge) map[string]artifact.Artifact {
	logger := ctxlog.FromContext(ctx)
	inputs := make(map[string]artifact.Artifact)

	for _, e := range edges {
		e = e.Normalize()
		if e.Target != nodeID {
			continue
		}
		dataID := DataID(e.Source, e.SourceHandle)
		a, err := s.Get(ctx, dataID)
		if err != nil {
			logger.Warn("Upstream artifact missing for node input.",
				"node_id", nodeID, "target_handle", e.TargetHandle, "data_id", dataID, "error", err)
			continue
		}
		inputs[e.TargetHandle] = a
	}
	return inputs
}

// Clear drops the artifacts of the given nodes, or every artifact when no
// ids are given, releasing in-memory entries and backing files. Clearing an
// already-cleared node id is a no-op.
func (s *Store) Clear(ctx context.Context, nodeIDs ...string) error {
	logger := ctxlog.FromContext(ctx)

	s.mu.Lock()
	var victims []*entry
	if len(nodeIDs) == 0 {
		for _, e := range s.entries {
			victims = append(victims, e)
		}
		s.entries = make(map[string]*entry)
	} else {
		for _, nodeID := range nodeIDs {
			prefix := nodeID + ":"
			for dataID, e := range s.entries {
				if strings.HasPrefix(dataID, prefix) {
					victims = append(victims, e)
					delete(s.entries, dataID)
				}
			}
		}
	}
	s.mu.Unlock()

	for _, e := range victims {
		if e.path == "" {
			continue
		}
		if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove artifact file during clear.", "path", e.path, "error", err)
		}
	}
	logger.Debug("Artifacts cleared.", "node_ids", nodeIDs, "count", len(victims))
	return nil
}

// Destroy clears every artifact and removes the cache directory itself.
func (s *Store) Destroy(ctx context.Context) error {
	if err := s.Clear(ctx); err != nil {
		return err
	}
	return os.RemoveAll(s.cacheDir)
}

// Len returns the number of stored artifacts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// sanitizeDataID maps a dataId to a filesystem-safe file name.
func sanitizeDataID(dataID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, dataID)
}
