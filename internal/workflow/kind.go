package workflow

import "fmt"

// Kind identifies the processor family a node belongs to. The set of kinds
// is closed; anything else is rejected when a submission is materialized.
type Kind string

const (
	KindSource    Kind = "source"
	KindTransform Kind = "transform"
	KindAnalyze   Kind = "analyze"
	KindVisualize Kind = "visualize"
	KindExport    Kind = "export"
)

// Kinds lists every valid node kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindSource, KindTransform, KindAnalyze, KindVisualize, KindExport}
}

// ParseKind converts a wire-format type string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSource, KindTransform, KindAnalyze, KindVisualize, KindExport:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown node kind '%s'", s)
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}
