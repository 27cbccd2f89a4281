package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeConfig decodes a node's loose config map into a typed, per-kind
// config struct. Unknown fields are rejected so configuration mistakes
// surface at graph-build time rather than first use.
func DecodeConfig(config map[string]any, out any) error {
	raw, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("config is not serializable: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("config does not match expected shape: %w", err)
	}
	return nil
}
